package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/se360/ride-dispatch/internal/api/dto"
	apperrors "github.com/se360/ride-dispatch/pkg/errors"
)

// TripService is the driver service's client for the trip service's
// internal accept endpoint. The trip service owns the ledger; the
// driver service only forwards the authenticated driver's intent.
type TripService struct {
	baseURL string
	http    *http.Client
}

// NewTripService creates a client for the given trip service base URL
func NewTripService(baseURL string) *TripService {
	return &TripService{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Accept forwards an accept attempt and returns the verdict string
// from the trip service: SUCCESS, ALREADY_ASSIGNED, or TRIP_NOT_FOUND.
func (c *TripService) Accept(ctx context.Context, tripID, driverID uuid.UUID) (string, error) {
	body, err := json.Marshal(dto.AcceptTripRequest{DriverID: driverID.String()})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/internal/v1/trips/%s/accept", c.baseURL, tripID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apperrors.DownstreamUnavailable("Trip service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return "", apperrors.DownstreamUnavailable(
			fmt.Sprintf("Trip service returned %d", resp.StatusCode), nil)
	}

	var verdict dto.AcceptTripResponse
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return "", apperrors.DownstreamUnavailable("Malformed trip service response", err)
	}

	return verdict.Result, nil
}
