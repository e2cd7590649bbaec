package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnhub/pkg/loadtest"
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:8080", "server base url")
		token       = flag.String("token", os.Getenv("LEARNHUB_TOKEN"), "bearer token for authenticated scenarios")
		concurrency = flag.Int("c", 20, "concurrent workers per scenario")
		duration    = flag.Duration("d", 30*time.Second, "duration per scenario")
		course      = flag.String("course", "", "course slug for the detail scenario")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := loadtest.NewClient(*baseURL, *token)
	if err := client.Get("/healthz")(ctx); err != nil {
		log.Fatalf("server not ready: %v", err)
	}

	scenarios := []loadtest.Scenario{
		{Name: "healthz", Requests: []loadtest.RequestFunc{client.Get("/healthz")}},
		{Name: "catalog", Requests: []loadtest.RequestFunc{
			client.Get("/courses"),
			client.Get("/courses?page=2&limit=5"),
			client.Get("/memberships"),
			client.Get("/payment/settings"),
		}},
	}
	if *course != "" {
		scenarios = append(scenarios, loadtest.Scenario{
			Name:     "course_detail",
			Requests: []loadtest.RequestFunc{client.Get("/courses/" + *course)},
		})
	}
	if *token != "" {
		scenarios = append(scenarios, loadtest.Scenario{Name: "my_learning", Requests: []loadtest.RequestFunc{
			client.Get("/licenses/me"),
			client.Get("/orders?page=1&limit=20"),
			// token 过期时只统计为失败，不中断压测
			client.Get("/users/me", http.StatusOK, http.StatusUnauthorized),
		}})
	}

	fmt.Printf("LearnHub 压测: %s (并发 %d, 每场景 %v)\n", *baseURL, *concurrency, *duration)
	for _, s := range scenarios {
		if ctx.Err() != nil {
			break
		}
		s.Concurrency = *concurrency
		s.Duration = *duration
		fmt.Println(loadtest.Run(ctx, s))
	}
}
