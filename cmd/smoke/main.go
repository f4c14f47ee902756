// Command smoke checks a running annotation viewer end to end.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	baseURL := flag.String("url", "http://127.0.0.1:8753", "Viewer base URL")
	wait := flag.Duration("wait", 2*time.Second, "Time to wait for the viewer to start")
	flag.Parse()

	time.Sleep(*wait)
	client := &http.Client{Timeout: 10 * time.Second}

	fmt.Println("1. Fetching annotation list...")
	body, ok := get(client, *baseURL+"/api/annotations")
	if !ok {
		fmt.Println("FAILED: annotation list")
		os.Exit(1)
	}
	var list struct {
		Documents []struct {
			Title string `json:"title"`
		} `json:"documents"`
	}
	if err := json.Unmarshal(body, &list); err != nil || len(list.Documents) == 0 {
		fmt.Printf("FAILED: annotation list is empty or invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("PASSED: %d documents\n", len(list.Documents))

	fmt.Println("2. Fetching rendered page...")
	page, ok := get(client, *baseURL+"/")
	if !ok || !strings.Contains(string(page), list.Documents[0].Title) {
		fmt.Println("FAILED: rendered page")
		os.Exit(1)
	}
	fmt.Println("PASSED: rendered page")
}

func get(client *http.Client, url string) ([]byte, bool) {
	resp, err := client.Get(url)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(body))
		return nil, false
	}
	return body, true
}
