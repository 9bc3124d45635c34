package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/fadedpez/zeuscoins/pkg/entities"
)

// ElasticsearchConfig holds configuration options for the Elasticsearch reporter
type ElasticsearchConfig struct {
	URL         string
	Username    string
	Password    string
	IndexPrefix string
}

// DefaultElasticsearchConfig returns a default configuration for Elasticsearch
func DefaultElasticsearchConfig() *ElasticsearchConfig {
	return &ElasticsearchConfig{
		URL:         "http://localhost:9200",
		IndexPrefix: "zeuscoins",
	}
}

// ElasticsearchReporter implements the Reporter interface using Elasticsearch
type ElasticsearchReporter struct {
	client      *elasticsearch.Client
	indexPrefix string
}

// NewElasticsearchReporter creates a new Elasticsearch reporter
func NewElasticsearchReporter(config *ElasticsearchConfig) (*ElasticsearchReporter, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{config.URL},
	}

	// Add authentication if provided
	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating Elasticsearch client: %w", err)
	}

	if config.IndexPrefix == "" {
		config.IndexPrefix = "zeuscoins"
	}

	reporter := &ElasticsearchReporter{
		client:      client,
		indexPrefix: config.IndexPrefix,
	}

	if err := reporter.initIndices(context.Background()); err != nil {
		return nil, fmt.Errorf("error initializing indices: %w", err)
	}

	return reporter, nil
}

// initIndices creates the necessary indices if they don't exist
func (r *ElasticsearchReporter) initIndices(ctx context.Context) error {
	redemptionMapping := `{
		"mappings": {
			"properties": {
				"id": { "type": "keyword" },
				"account_id": { "type": "keyword" },
				"reward_key": { "type": "keyword" },
				"reward_label": { "type": "keyword" },
				"coins_spent": { "type": "long" },
				"status": { "type": "keyword" },
				"created_at": { "type": "date" }
			}
		}
	}`
	if err := r.ensureIndex(ctx, r.redemptionIndex(), redemptionMapping); err != nil {
		return err
	}

	driftMapping := `{
		"mappings": {
			"properties": {
				"account_id": { "type": "keyword" },
				"balance": { "type": "long" },
				"ledger_sum": { "type": "long" },
				"difference": { "type": "long" },
				"detected_at": { "type": "date" }
			}
		}
	}`
	return r.ensureIndex(ctx, r.driftIndex(), driftMapping)
}

func (r *ElasticsearchReporter) ensureIndex(ctx context.Context, name, mapping string) error {
	res, err := r.client.Indices.Exists([]string{name})
	if err != nil {
		return fmt.Errorf("error checking if index %s exists: %w", name, err)
	}
	defer res.Body.Close()

	if res.StatusCode != 404 {
		return nil
	}

	req := esapi.IndicesCreateRequest{
		Index: name,
		Body:  bytes.NewReader([]byte(mapping)),
	}

	createRes, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("error creating index %s: %w", name, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("error creating index %s: %s", name, createRes.String())
	}

	return nil
}

func (r *ElasticsearchReporter) redemptionIndex() string {
	return r.indexPrefix + "_redemptions"
}

func (r *ElasticsearchReporter) driftIndex() string {
	return r.indexPrefix + "_drift"
}

// IndexRedemption records a completed reward redemption
func (r *ElasticsearchReporter) IndexRedemption(ctx context.Context, redemption *entities.Redemption) error {
	return r.index(ctx, r.redemptionIndex(), redemption)
}

// IndexDrift records a balance/ledger disagreement found by reconciliation
func (r *ElasticsearchReporter) IndexDrift(ctx context.Context, drift *Drift) error {
	return r.index(ctx, r.driftIndex(), drift)
}

func (r *ElasticsearchReporter) index(ctx context.Context, indexName string, doc interface{}) error {
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error marshaling document: %w", err)
	}

	res, err := r.client.Index(
		indexName,
		bytes.NewReader(jsonData),
		r.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("error indexing document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing document: %s", res.String())
	}

	return nil
}

// Close releases resources held by the reporter. The underlying client does
// not require explicit shutdown.
func (r *ElasticsearchReporter) Close() error {
	return nil
}
