package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

func main() {
	base := strings.TrimRight(strings.TrimSpace(os.Getenv("DEALS_URL")), "/")
	if base == "" {
		base = "http://localhost:8081"
	}

	url := base + "/api/v1/refresh"
	req, err := http.NewRequest("POST", url, nil)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("Response Status: %s\n%s\n", resp.Status, body)
	if resp.StatusCode == http.StatusTooManyRequests {
		fmt.Printf("Retry after %s seconds\n", resp.Header.Get("Retry-After"))
	}
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
