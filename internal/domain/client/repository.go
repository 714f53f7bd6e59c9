package client

import "context"

type ClientRepository interface {
	Create(ctx context.Context, client *Client) error
	GetByID(ctx context.Context, id uint) (*Client, error)
	GetByClientNumber(ctx context.Context, clientNumber string) (*Client, error)
	Update(ctx context.Context, client *Client) error
	Delete(ctx context.Context, id uint) error
}
