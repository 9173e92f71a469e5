package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

type address struct {
	Country     string `json:"country"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	lat, lng    float64
}

// Fixed addresses along Potsdam -> Teltow; seeded into locations so runs work without a geocoder.
var (
	rideStart = address{"Germany", "14467", "Potsdam", "Am Kanal", "1", 52.3906, 13.0645}
	rideEnd   = address{"Germany", "14513", "Teltow", "Ruhlsdorfer Str.", "2", 52.4022, 13.2137}
	pickups   = []address{
		{"Germany", "14532", "Kleinmachnow", "Hohe Kiefer", "10", 52.3960, 13.1000},
		{"Germany", "14532", "Stahnsdorf", "Potsdamer Allee", "5", 52.3990, 13.1800},
	}
)

func NewRunner(cfg Config) *Runner {
	return &Runner{cfg: cfg, httpc: &http.Client{Timeout: 15 * time.Second}}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
			defer db.Close()
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
		defer r.redis.Close()
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency.Round(time.Millisecond))
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	return []TestCase{
		{"Env: Postgres connect", checkPostgres},
		{"Env: Redis connect", checkRedis},
		{"DB: tables exist", checkTables},
		{"DB: seed bench locations", seedLocations},
		{"HTTP: health", checkHealth},
		{"HTTP: unauthenticated request rejected", checkAuthRequired},
		{"Flow: offer, request, accept, leave", checkFlow},
		{"Race: single seat, concurrent accepts", checkSingleSeatRace},
		{"Perf: preview throughput", checkPreviewLoad},
	}
}

func checkPostgres(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: statusFail, Note: "db not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.db.Ping(ctx); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	return Result{Status: statusPass}
}

func checkRedis(ctx context.Context, r *Runner) Result {
	if r.redis == nil {
		return Result{Status: statusSkip, Note: "redis not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	return Result{Status: statusPass}
}

func checkTables(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: statusSkip, Note: "db not configured"}
	}
	for _, table := range []string{"locations", "rides", "join_requests", "join_request_events", "point_accounts", "driver_ratings", "bonuses", "bonus_redemptions"} {
		var exists bool
		err := r.db.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = $1
			)`, table).Scan(&exists)
		if err != nil {
			return Result{Status: statusFail, Note: err.Error()}
		}
		if !exists {
			return Result{Status: statusFail, Note: "missing table " + table}
		}
	}
	return Result{Status: statusPass}
}

func seedLocations(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: statusSkip, Note: "db not configured; relying on the geocoder"}
	}
	for _, a := range append([]address{rideStart, rideEnd}, pickups...) {
		_, err := r.db.Exec(ctx, `
			INSERT INTO locations (id, country, postal_code, city, street, house_number, lat, lng)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (country, postal_code, city, street, house_number) DO NOTHING`,
			uuid.NewString(), a.Country, a.PostalCode, a.City, a.Street, a.HouseNumber, a.lat, a.lng)
		if err != nil {
			return Result{Status: statusFail, Note: err.Error()}
		}
	}
	return Result{Status: statusPass}
}

func checkHealth(ctx context.Context, r *Runner) Result {
	status, _, latency, err := r.call(ctx, http.MethodGet, "/health", "", nil)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	return expect(status, latency, http.StatusOK)
}

func checkAuthRequired(ctx context.Context, r *Runner) Result {
	status, _, latency, err := r.call(ctx, http.MethodGet, "/api/me/points", "", nil)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	return expect(status, latency, http.StatusUnauthorized)
}

func checkFlow(ctx context.Context, r *Runner) Result {
	if r.cfg.DriverToken == "" || len(r.cfg.RiderTokens) == 0 {
		return Result{Status: statusSkip, Note: "driver and rider tokens required"}
	}
	start := time.Now()
	rideID, err := r.offerRide(ctx, 3)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	defer r.call(context.WithoutCancel(ctx), http.MethodDelete, "/api/rides/"+rideID, r.cfg.DriverToken, nil)

	rider := r.cfg.RiderTokens[0]
	body := joinBody(pickups[0])
	status, raw, _, err := r.call(ctx, http.MethodPost, "/api/rides/"+rideID+"/requests/preview", rider, body)
	if err != nil || status != http.StatusOK {
		return Result{Status: statusFail, Note: fmt.Sprintf("preview status=%d err=%v %s", status, err, raw)}
	}
	reqID, err := r.requestJoin(ctx, rideID, rider, pickups[0])
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	status, raw, _, err = r.call(ctx, http.MethodPost, "/api/requests/"+reqID+"/accept", r.cfg.DriverToken, nil)
	if err != nil || status != http.StatusOK {
		return Result{Status: statusFail, Note: fmt.Sprintf("accept status=%d err=%v %s", status, err, raw)}
	}

	var view struct {
		Ride struct {
			CurrentPassengers int `json:"current_passengers"`
			TotalPoints       int `json:"total_points"`
		} `json:"ride"`
		Stops []json.RawMessage `json:"stops"`
	}
	if err := r.getJSON(ctx, "/api/rides/"+rideID, r.cfg.DriverToken, &view); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	if view.Ride.CurrentPassengers != 1 || len(view.Stops) != 1 {
		return Result{Status: statusFail, Note: fmt.Sprintf("after accept passengers=%d stops=%d", view.Ride.CurrentPassengers, len(view.Stops))}
	}

	status, raw, _, err = r.call(ctx, http.MethodPost, "/api/requests/"+reqID+"/leave", rider, nil)
	if err != nil || status != http.StatusOK {
		return Result{Status: statusFail, Note: fmt.Sprintf("leave status=%d err=%v %s", status, err, raw)}
	}
	if err := r.getJSON(ctx, "/api/rides/"+rideID, r.cfg.DriverToken, &view); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	if view.Ride.CurrentPassengers != 0 || view.Ride.TotalPoints != 0 {
		return Result{Status: statusFail, Note: fmt.Sprintf("after leave passengers=%d points=%d", view.Ride.CurrentPassengers, view.Ride.TotalPoints)}
	}
	return Result{Status: statusPass, Latency: time.Since(start)}
}

func checkSingleSeatRace(ctx context.Context, r *Runner) Result {
	if r.cfg.DriverToken == "" || len(r.cfg.RiderTokens) < 2 {
		return Result{Status: statusSkip, Note: "driver and at least two rider tokens required"}
	}
	rideID, err := r.offerRide(ctx, 1)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	defer r.call(context.WithoutCancel(ctx), http.MethodDelete, "/api/rides/"+rideID, r.cfg.DriverToken, nil)

	var ids []string
	for i, rider := range r.cfg.RiderTokens {
		id, err := r.requestJoin(ctx, rideID, rider, pickups[i%len(pickups)])
		if err != nil {
			return Result{Status: statusFail, Note: err.Error()}
		}
		ids = append(ids, id)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		full     int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			status, _, _, err := r.call(ctx, http.MethodPost, "/api/requests/"+id+"/accept", r.cfg.DriverToken, nil)
			if err != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			switch status {
			case http.StatusOK:
				accepted++
			case http.StatusConflict:
				full++
			}
		}(id)
	}
	wg.Wait()

	note := fmt.Sprintf("accepted=%d conflict=%d of %d", accepted, full, len(ids))
	if accepted != 1 || full != len(ids)-1 {
		return Result{Status: statusFail, Note: note}
	}
	return Result{Status: statusPass, Note: note}
}

func checkPreviewLoad(ctx context.Context, r *Runner) Result {
	if r.cfg.DriverToken == "" || len(r.cfg.RiderTokens) == 0 {
		return Result{Status: statusSkip, Note: "driver and rider tokens required"}
	}
	rideID, err := r.offerRide(ctx, 3)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	defer r.call(context.WithoutCancel(ctx), http.MethodDelete, "/api/rides/"+rideID, r.cfg.DriverToken, nil)

	end := time.Now().Add(r.cfg.Duration)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		latencies []time.Duration
		errCount  int
	)
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rider := r.cfg.RiderTokens[i%len(r.cfg.RiderTokens)]
			body := joinBody(pickups[i%len(pickups)])
			for time.Now().Before(end) && ctx.Err() == nil {
				status, _, latency, err := r.call(ctx, http.MethodPost, "/api/rides/"+rideID+"/requests/preview", rider, body)
				mu.Lock()
				if err != nil || status != http.StatusOK {
					errCount++
				} else {
					latencies = append(latencies, latency)
				}
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if len(latencies) == 0 {
		return Result{Status: statusFail, Note: fmt.Sprintf("no successful previews, errors=%d", errCount)}
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	p95 := latencies[len(latencies)*95/100]
	rps := float64(len(latencies)) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Latency: p95, Note: fmt.Sprintf("rps=%.1f p95=%s errors=%d", rps, p95.Round(time.Millisecond), errCount)}
}

func (r *Runner) offerRide(ctx context.Context, capacity int) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	status, raw, _, err := r.call(ctx, http.MethodPost, "/api/rides", r.cfg.DriverToken, map[string]any{
		"start":          rideStart,
		"end":            rideEnd,
		"arrival_date":   r.cfg.ArrivalDate,
		"arrival_time":   r.cfg.ArrivalClock,
		"max_passengers": capacity,
	})
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("offer ride: status=%d %s", status, raw)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (r *Runner) requestJoin(ctx context.Context, rideID, token string, pickup address) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	status, raw, _, err := r.call(ctx, http.MethodPost, "/api/rides/"+rideID+"/requests", token, joinBody(pickup))
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("request join: status=%d %s", status, raw)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func joinBody(pickup address) map[string]any {
	return map[string]any{"pickup": pickup, "passengers": 1}
}

func (r *Runner) getJSON(ctx context.Context, path, token string, v any) error {
	status, raw, _, err := r.call(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("GET %s: status=%d %s", path, status, raw)
	}
	return json.Unmarshal(raw, v)
}

func (r *Runner) call(ctx context.Context, method, path, token string, body any) (int, []byte, time.Duration, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, 0, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, reader)
	if err != nil {
		return 0, nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	return resp.StatusCode, raw, time.Since(start), err
}

func expect(status int, latency time.Duration, want int) Result {
	note := fmt.Sprintf("status=%d", status)
	if status != want {
		return Result{Status: statusFail, Latency: latency, Note: note}
	}
	return Result{Status: statusPass, Latency: latency, Note: note}
}
