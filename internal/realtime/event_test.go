package realtime

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent_NewBid(t *testing.T) {
	data := []byte(`{"auction_id":"a1","bidder_id":"u2","bidder":"Ravi","amount":"750"}`)

	ev, err := DecodeEvent("newBid", data)

	require.NoError(t, err)
	assert.Equal(t, EventNewBid, ev.Type)
	require.NotNil(t, ev.NewBid)
	assert.Equal(t, "a1", ev.NewBid.AuctionID)
	assert.Equal(t, "u2", ev.NewBid.BidderID)
	assert.True(t, ev.NewBid.Amount.Equal(decimal.NewFromInt(750)))
}

func TestDecodeEvent_Outbid(t *testing.T) {
	data := []byte(`{"auction_id":"a1","auction_name":"Pulasa Premium","user_id":"u1","previous_amount":"600","new_amount":"750","refunded_amount":"600"}`)

	ev, err := DecodeEvent("outbid", data)

	require.NoError(t, err)
	assert.Equal(t, EventOutbid, ev.Type)
	require.NotNil(t, ev.Outbid)
	assert.Equal(t, "Pulasa Premium", ev.Outbid.AuctionName)
	assert.True(t, ev.Outbid.RefundedAmount.Equal(decimal.NewFromInt(600)))
}

func TestDecodeEvent_AuctionWon(t *testing.T) {
	data := []byte(`{"auction_id":"a1","auction_name":"Pulasa Premium","user_id":"u1","amount":"900"}`)

	ev, err := DecodeEvent("auctionWon", data)

	require.NoError(t, err)
	assert.Equal(t, EventAuctionWon, ev.Type)
	require.NotNil(t, ev.AuctionWon)
	assert.True(t, ev.AuctionWon.Amount.Equal(decimal.NewFromInt(900)))
}

func TestDecodeEvent_UnknownEventErrors(t *testing.T) {
	_, err := DecodeEvent("somethingElse", []byte(`{}`))
	assert.Error(t, err)
}

func TestDecodeEvent_MalformedPayloadErrors(t *testing.T) {
	_, err := DecodeEvent("newBid", []byte(`{"amount":`))
	assert.Error(t, err)
}

func TestRoomSet_TracksMembership(t *testing.T) {
	rs := newRoomSet()
	rs.add("a1")
	rs.add("a2")
	rs.add("a1")

	assert.ElementsMatch(t, []string{"a1", "a2"}, rs.list())

	rs.remove("a1")
	assert.ElementsMatch(t, []string{"a2"}, rs.list())
}
