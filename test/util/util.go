// Package util provides helper functions shared across integration tests.
//
// WriteMetadata writes a synthetic JSONL meta-data file that separates
// predictable from unpredictable series on its features.
//
// StartInfluxDB launches a disposable InfluxDB 2 instance in a Docker
// container. It returns the connection settings and a cleanup function.
//
// WaitForFile polls a path until it contains the desired substring.
package util

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// InfluxReadyTimeout bounds the container startup.
	InfluxReadyTimeout = 60 * time.Second

	pollInterval = 50 * time.Millisecond
)

// Influx holds the settings of a started InfluxDB container.
type Influx struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// WriteMetadata writes n records to dir/meta.jsonl. Even records are
// predictable (best error 0.1), odd ones are not (best error 0.5).
func WriteMetadata(dir string, n int) (string, error) {
	path := filepath.Join(dir, "meta.jsonl")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	for i := 0; i < n; i++ {
		sign, bestErr := -1.0, 0.1
		if i%2 == 1 {
			sign, bestErr = 1, 0.5
		}
		rec := map[string]any{
			"hpt_res": map[string]any{
				"arima":   []any{map[string]any{"p": 2, "d": 1, "q": 1}, bestErr},
				"prophet": []any{map[string]any{"seasonality_mode": "additive"}, bestErr + 0.2},
			},
			"features": map[string]any{
				"y_acf1":      sign * (0.5 + float64(i%10)*0.03),
				"trend_slope": sign * (0.1 + float64(i%7)*0.01),
			},
			"best_model": "arima",
		}
		if err := enc.Encode(rec); err != nil {
			return "", err
		}
	}
	return path, nil
}

// WaitForFile polls path until it contains substr or the context is done.
func WaitForFile(ctx context.Context, path, substr string) error {
	for {
		if b, err := os.ReadFile(path); err == nil && strings.Contains(string(b), substr) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%q not found in %s: %w", substr, path, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

// StartInfluxDB launches a temporary InfluxDB 2 instance inside a Docker
// container and returns its settings along with a cleanup function.
func StartInfluxDB(ctx context.Context) (Influx, func(), error) {
	cfg := Influx{Token: "test-token", Org: "test", Bucket: "predictability"}
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "admin",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "adminpassword",
			"DOCKER_INFLUXDB_INIT_ORG":         cfg.Org,
			"DOCKER_INFLUXDB_INIT_BUCKET":      cfg.Bucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": cfg.Token,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(InfluxReadyTimeout),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		return cfg, nil, err
	}
	cleanup := func() { _ = cont.Terminate(context.Background()) }

	host, err := cont.Host(ctx)
	if err != nil {
		cleanup()
		return cfg, nil, err
	}
	port, err := cont.MappedPort(ctx, "8086")
	if err != nil {
		cleanup()
		return cfg, nil, err
	}
	cfg.URL = fmt.Sprintf("http://%s:%s", host, port.Port())

	waitCtx, cancel := context.WithTimeout(ctx, InfluxReadyTimeout)
	defer cancel()
	if err := waitForBucket(waitCtx, cfg); err != nil {
		cleanup()
		return cfg, nil, err
	}
	return cfg, cleanup, nil
}

// waitForBucket returns once the initial setup has created the bucket.
func waitForBucket(ctx context.Context, cfg Influx) error {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	defer client.Close()
	for {
		if _, err := client.BucketsAPI().FindBucketByName(ctx, cfg.Bucket); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("bucket %s not ready: %w", cfg.Bucket, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}
