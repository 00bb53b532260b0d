//go:build ignore

// Manual smoke test for the discovery HTTP surface. Run against a live
// server: go run scripts/test_discovery_api.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	pass := color.New(color.FgGreen).PrintfFunc()
	fail := color.New(color.FgRed).PrintfFunc()
	section := color.New(color.FgCyan, color.Bold).PrintfFunc()

	section("== 1. List stages (public) ==\n")
	resp, body, err := sendRequest("GET", "/discovery/v1/stages", "", nil)
	if err != nil || resp.StatusCode != 200 {
		fail("FAIL: stages endpoint: %v (status %v)\n", err, resp)
		os.Exit(1)
	}
	pass("OK\n")

	section("== 2. Create session ==\n")
	resp, body, err = sendRequest("POST", "/discovery/v1/sessions", "", map[string]interface{}{
		"user_name":  "Smoke Tester",
		"user_email": "smoke@example.com",
		"title":      "Smoke Discovery",
	})
	if err != nil || resp.StatusCode != 201 {
		fail("FAIL: create session: %v (status %v)\n", err, resp)
		os.Exit(1)
	}

	var created struct {
		Data struct {
			Id    string `json:"id"`
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		fail("FAIL: parse create response: %v\n", err)
		os.Exit(1)
	}
	pass("OK session=%s\n", created.Data.Id)

	section("== 3. Show session (authorized) ==\n")
	resp, body, err = sendRequest("GET", "/discovery/v1/sessions/"+created.Data.Id, created.Data.Token, nil)
	if err != nil || resp.StatusCode != 200 {
		fail("FAIL: show session: %v (status %v)\n", err, resp)
		os.Exit(1)
	}
	var shown map[string]interface{}
	json.Unmarshal(body, &shown)
	prettyPrint(shown)
	pass("OK\n")

	section("== 4. BRD before completion ==\n")
	resp, _, err = sendRequest("GET", "/discovery/v1/sessions/"+created.Data.Id+"/brd", created.Data.Token, nil)
	if err != nil || resp.StatusCode != 202 {
		fail("FAIL: expected 202 for pending BRD, got %v (%v)\n", resp, err)
		os.Exit(1)
	}
	pass("OK\n")

	pass("\nAll smoke checks passed.\n")
}
