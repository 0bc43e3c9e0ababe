package api

import (
	"context"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"pulasa-client/models"
)

type AuctionsResponse struct {
	Auctions []models.Auction `json:"auctions"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
}

type auctionResponse struct {
	Auction *models.Auction `json:"auction"`
}

type CreateAuctionRequest struct {
	ItemName    string          `json:"item_name"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	BasePrice   decimal.Decimal `json:"base_price"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     time.Time       `json:"end_time"`
}

func (c *Client) ListAuctions(ctx context.Context, filters map[string]string) (*AuctionsResponse, error) {
	query := url.Values{}
	for k, v := range filters {
		if v != "" {
			query.Set(k, v)
		}
	}

	var resp AuctionsResponse
	if err := c.get(ctx, "/api/auction", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetAuction(ctx context.Context, id string) (*models.Auction, error) {
	var resp auctionResponse
	if err := c.get(ctx, "/api/auction/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Auction, nil
}

func (c *Client) CreateAuction(ctx context.Context, req CreateAuctionRequest) (*models.Auction, error) {
	var resp auctionResponse
	if err := c.post(ctx, "/api/auction/create", req, &resp); err != nil {
		return nil, err
	}
	return resp.Auction, nil
}

func (c *Client) EndAuction(ctx context.Context, id string) (*models.Auction, error) {
	var resp auctionResponse
	if err := c.post(ctx, "/api/auction/"+id+"/end", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Auction, nil
}

func (c *Client) AuctionStats(ctx context.Context, id string) (*models.AuctionStats, error) {
	var resp struct {
		Stats *models.AuctionStats `json:"stats"`
	}
	if err := c.get(ctx, "/api/auction/"+id+"/stats", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stats, nil
}

func (c *Client) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var resp struct {
		Stats *models.DashboardStats `json:"stats"`
	}
	if err := c.get(ctx, "/api/admin/dashboard", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stats, nil
}
