package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the benchmark settings
var (
	targetURL   string
	concurrency int
	duration    time.Duration
	workload    string
)

// Metrics
var (
	totalRequests uint64
	success200    uint64
	fail400       uint64 // Business rejections (funds, amounts)
	fail403       uint64 // Session failures
	failOther     uint64
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "API Base URL")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.StringVar(&workload, "workload", "uniform", "Workload type: uniform | hotspot")
}

// benchAccount is one seeded demo customer plus its live session token.
type benchAccount struct {
	number int64
	token  string
}

func main() {
	flag.Parse()
	log.Printf("Starting Benchmark: %s | Workers: %d | Duration: %s", workload, concurrency, duration)

	accounts, err := loginDemoAccounts()
	if err != nil {
		log.Fatalf("Unable to establish sessions: %v", err)
	}
	log.Printf("Logged in %d demo accounts", len(accounts))

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go worker(&wg, start, accounts)
	}

	wg.Wait()
	printResults(time.Since(start))
}

// loginDemoAccounts signs in the accounts created by the seeder. Account
// numbers come back in the login response, so no database access is needed.
func loginDemoAccounts() ([]benchAccount, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	accounts := []benchAccount{}

	for i := 0; ; i++ {
		body, _ := json.Marshal(map[string]string{
			"email":    fmt.Sprintf("demo%03d@example.com", i),
			"password": "demo-password",
		})
		resp, err := client.Post(targetURL+"/login", "application/json", bytes.NewBuffer(body))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}

		var session struct {
			Number int64  `json:"number"`
			Token  string `json:"token"`
		}
		err = json.NewDecoder(resp.Body).Decode(&session)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, benchAccount{number: session.Number, token: session.Token})
	}

	if len(accounts) < 2 {
		return nil, fmt.Errorf("need at least 2 seeded accounts, got %d (run the seeder first)", len(accounts))
	}
	return accounts, nil
}

func worker(wg *sync.WaitGroup, start time.Time, accounts []benchAccount) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}

	for time.Since(start) < duration {
		from, to := pickPair(accounts)

		payload := map[string]interface{}{
			"recipient_account": to.number,
			"amount":            "1.00",
		}
		body, _ := json.Marshal(payload)

		req, _ := http.NewRequest("PUT",
			fmt.Sprintf("%s/conta/%d/transferencia", targetURL, from.number),
			bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", from.token)

		resp, err := client.Do(req)
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}

		atomic.AddUint64(&totalRequests, 1)
		switch resp.StatusCode {
		case 200:
			atomic.AddUint64(&success200, 1)
		case 400:
			atomic.AddUint64(&fail400, 1)
		case 403:
			atomic.AddUint64(&fail403, 1)
		default:
			atomic.AddUint64(&failOther, 1)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}

func pickPair(accounts []benchAccount) (benchAccount, benchAccount) {
	if workload == "hotspot" {
		// Hotspot: 90% of traffic bounces between the first two accounts
		if rand.Float32() < 0.90 {
			if rand.Float32() < 0.5 {
				return accounts[0], accounts[1]
			}
			return accounts[1], accounts[0]
		}
	}

	a := rand.Intn(len(accounts))
	b := rand.Intn(len(accounts))
	for a == b {
		b = rand.Intn(len(accounts))
	}
	return accounts[a], accounts[b]
}

func printResults(d time.Duration) {
	total := atomic.LoadUint64(&totalRequests)
	s200 := atomic.LoadUint64(&success200)
	f400 := atomic.LoadUint64(&fail400)
	f403 := atomic.LoadUint64(&fail403)
	fErr := atomic.LoadUint64(&failOther)

	fmt.Println("\n--- Benchmark Results ---")
	fmt.Printf("Duration:       %s\n", d.Round(time.Millisecond))
	fmt.Printf("Total Requests: %d\n", total)
	fmt.Printf("Throughput:     %.2f req/s\n", float64(total)/d.Seconds())
	fmt.Printf("Transferred:    %d\n", s200)
	fmt.Printf("Rejected (400): %d\n", f400)
	fmt.Printf("Forbidden:      %d\n", f403)
	fmt.Printf("Errors:         %d\n", fErr)
}
