package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"voucher-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRedeemTicketRejectsEmptyReference(t *testing.T) {
	s := &RedemptionService{}

	_, err := s.RedeemTicket(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = s.RedeemTicket(context.Background(), "   ")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestRedeemTicketRejectsProductCode(t *testing.T) {
	// Scanning a product's QR at the redemption desk is operator
	// error, not a missing ticket.
	s := &RedemptionService{}

	_, err := s.RedeemTicket(context.Background(), "product:PROD-1")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}

func TestRedeemFailureReason(t *testing.T) {
	cases := []struct {
		err    error
		reason string
	}{
		{fmt.Errorf("wrap: %w", models.ErrNotFound), "not_found"},
		{fmt.Errorf("wrap: %w", models.ErrAlreadyRedeemed), "already_redeemed"},
		{fmt.Errorf("wrap: %w", models.ErrAlreadyRefunded), "already_refunded"},
		{fmt.Errorf("wrap: %w", models.ErrInvalidInput), "invalid_input"},
		{errors.New("connection refused"), "db_error"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.reason, redeemFailureReason(tc.err))
	}
}
