package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/navlane/navlane/monitor/internal/config"
	"github.com/navlane/navlane/monitor/internal/ekf"
)

type jsonFeed struct {
	laneID string
	src    config.Source
	client *http.Client
}

// Fetch retrieves the lane state endpoint and decodes the JSON body.
func (f *jsonFeed) Fetch(ctx context.Context) (*ekf.LaneState, error) {
	body, err := fetchBody(ctx, f.client, f.src.Endpoint, "application/json")
	if err != nil {
		return nil, fmt.Errorf("json feed %q: %w", f.laneID, err)
	}
	defer body.Close()

	var s ekf.LaneState
	dec := json.NewDecoder(body)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("json feed %q: decode: %w", f.laneID, err)
	}
	return &s, nil
}
