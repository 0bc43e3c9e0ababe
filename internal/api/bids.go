package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"pulasa-client/internal/payment"
	"pulasa-client/models"
)

type BidsResponse struct {
	Bids  []models.Bid `json:"bids"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
}

// CreateBidOrder asks the server for a payment order covering the bid amount
// plus the platform fee. The returned descriptor is handed to the gateway
// verbatim.
func (c *Client) CreateBidOrder(ctx context.Context, auctionID string, amount decimal.Decimal) (*models.PaymentOrder, error) {
	req := map[string]any{
		"auction_id": auctionID,
		"amount":     amount,
	}
	var resp struct {
		Order *models.PaymentOrder `json:"order"`
	}
	if err := c.post(ctx, "/api/bid/create-order", req, &resp); err != nil {
		return nil, err
	}
	return resp.Order, nil
}

// VerifyBidPayment forwards the gateway completion identifiers to the server.
// This call, and only this call, finalizes the bid.
func (c *Client) VerifyBidPayment(ctx context.Context, completion payment.Completion) (*models.Bid, error) {
	req := map[string]string{
		"payment_id": completion.PaymentID,
		"order_id":   completion.OrderID,
		"signature":  completion.Signature,
	}
	var resp struct {
		Bid *models.Bid `json:"bid"`
	}
	if err := c.post(ctx, "/api/bid/verify-payment", req, &resp); err != nil {
		return nil, err
	}
	return resp.Bid, nil
}

func (c *Client) MyBids(ctx context.Context, page int) (*BidsResponse, error) {
	query := url.Values{}
	if page > 1 {
		query.Set("page", strconv.Itoa(page))
	}
	var resp BidsResponse
	if err := c.get(ctx, "/api/bid/my-bids", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AuctionBids(ctx context.Context, auctionID string, page int) (*BidsResponse, error) {
	query := url.Values{}
	if page > 1 {
		query.Set("page", strconv.Itoa(page))
	}
	var resp BidsResponse
	if err := c.get(ctx, "/api/bid/auction/"+auctionID, query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
