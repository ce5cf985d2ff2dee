package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/safetywatch-backend/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	var dryRun bool
	var timeout time.Duration
	flag.BoolVar(&dryRun, "dry-run", false, "print overdue observations without sending the digest")
	flag.DurationVar(&timeout, "timeout", time.Minute, "overall time limit for the scan")
	flag.Parse()

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		return 1
	}
	defer func() {
		if err := application.Close(); err != nil {
			fmt.Printf("close app: %v\n", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if dryRun {
		rows, err := application.Services.Overdue.Overdue(ctx)
		if err != nil {
			fmt.Printf("load overdue observations: %v\n", err)
			return 1
		}
		for _, o := range rows {
			fmt.Printf("[dry-run] overdue id=%d date=%s dept=%q name=%q\n", o.ID, o.Date, o.Department, o.Name)
		}
		fmt.Printf("done; backend=%s overdue=%d\n", application.Store.Backend, len(rows))
		return 0
	}

	// Delivery is awaited inside ScanOverdue, so Close only releases resources.
	n, err := application.ScanOverdue(ctx)
	if err != nil {
		fmt.Printf("overdue scan: %v\n", err)
		return 1
	}
	fmt.Printf("done; backend=%s overdue=%d\n", application.Store.Backend, n)
	return 0
}
