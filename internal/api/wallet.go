package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"pulasa-client/internal/payment"
	"pulasa-client/models"
)

type TransactionsResponse struct {
	Transactions []models.Transaction `json:"transactions"`
	Total        int                  `json:"total"`
	Page         int                  `json:"page"`
}

// WalletBalance is a passive refresh: it runs behind the circuit breaker and
// simply retries on the next trigger when the API is down.
func (c *Client) WalletBalance(ctx context.Context) (*models.Wallet, error) {
	var resp models.Wallet
	if err := c.getPassive(ctx, "/api/wallet/balance", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateTopupOrder(ctx context.Context, amount decimal.Decimal) (*models.PaymentOrder, error) {
	var resp struct {
		Order *models.PaymentOrder `json:"order"`
	}
	if err := c.post(ctx, "/api/wallet/topup/create-order", map[string]any{"amount": amount}, &resp); err != nil {
		return nil, err
	}
	return resp.Order, nil
}

// VerifyTopupPayment finalizes a wallet top-up; the server credits the
// balance only after verifying the gateway signature.
func (c *Client) VerifyTopupPayment(ctx context.Context, completion payment.Completion) (*models.Wallet, error) {
	req := map[string]string{
		"paymentId": completion.PaymentID,
		"orderId":   completion.OrderID,
		"signature": completion.Signature,
	}
	var resp models.Wallet
	if err := c.post(ctx, "/api/wallet/topup/verify-payment", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Withdraw(ctx context.Context, amount decimal.Decimal) (*models.Wallet, error) {
	var resp models.Wallet
	if err := c.post(ctx, "/api/wallet/withdraw", map[string]any{"amount": amount}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Transactions(ctx context.Context, page, limit int) (*TransactionsResponse, error) {
	query := url.Values{
		"page":  []string{strconv.Itoa(page)},
		"limit": []string{strconv.Itoa(limit)},
	}
	var resp TransactionsResponse
	if err := c.get(ctx, "/api/wallet/transactions", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ActiveBids(ctx context.Context) ([]models.Bid, error) {
	var resp struct {
		Bids []models.Bid `json:"bids"`
	}
	if err := c.get(ctx, "/api/wallet/active-bids", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Bids, nil
}

func (c *Client) WonAuctions(ctx context.Context) ([]models.Auction, error) {
	var resp struct {
		Auctions []models.Auction `json:"auctions"`
	}
	if err := c.get(ctx, "/api/wallet/won-auctions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Auctions, nil
}
