package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"voucher-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestIssueTicketsRejectsBadQuantity(t *testing.T) {
	s := &IssuanceService{maxBatchSize: 100}

	_, err := s.IssueTickets(context.Background(), &IssueTicketsRequest{
		ProductID: "PROD-1",
		Quantity:  0,
	})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = s.IssueTickets(context.Background(), &IssueTicketsRequest{
		ProductID: "PROD-1",
		Quantity:  -3,
	})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestIssueTicketsRejectsOversizedBatch(t *testing.T) {
	s := &IssuanceService{maxBatchSize: 10}

	_, err := s.IssueTickets(context.Background(), &IssueTicketsRequest{
		ProductID: "PROD-1",
		Quantity:  11,
	})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestIssueFailureReason(t *testing.T) {
	cases := []struct {
		err    error
		reason string
	}{
		{fmt.Errorf("wrap: %w", models.ErrNotFound), "not_found"},
		{fmt.Errorf("wrap: %w", models.ErrInactiveProduct), "inactive_product"},
		{fmt.Errorf("wrap: %w", models.ErrInsufficientStock), "insufficient_stock"},
		{errors.New("connection refused"), "db_error"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.reason, issueFailureReason(tc.err))
	}
}

func TestIssueTicketsAtomicity(t *testing.T) {
	// Concurrency scenarios (two issuers racing for the last unit of
	// stock) live in the store integration tests; the FOR UPDATE
	// transaction is what provides the guarantee.
	t.Skip("Integration test - requires database")
}
