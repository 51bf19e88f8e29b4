// Package main runs a demo WebSocket client for solve job events: it creates
// a small instance, starts a solve, and streams incumbents until completion.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"

	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Create a small instance
	instBody := []byte(`{
		"name": "demo",
		"depot": {"id": 0, "location": {"x": 0, "y": 0}, "due": 1000},
		"customers": [
			{"id": 1, "location": {"x": 10, "y": 0}, "demand": 10, "due": 1000},
			{"id": 2, "location": {"x": 0, "y": 10}, "demand": 20, "due": 1000},
			{"id": 3, "location": {"x": -10, "y": 0}, "demand": 15, "due": 1000},
			{"id": 4, "location": {"x": 0, "y": -10}, "demand": 25, "due": 1000}
		],
		"vehicles": [{"id": 1, "capacity": 40}, {"id": 2, "capacity": 40}]
	}`)
	var inst struct {
		ID string `json:"id"`
	}
	if err := postJSON(base+"/v1/instances", instBody, &inst); err != nil {
		log.Fatal(err)
	}
	log.Printf("Instance ID: %s", inst.ID)

	// Start a solve job
	solveBody := []byte(fmt.Sprintf(`{"instanceId":%q,"propagator":"ac3","improve":true}`, inst.ID))
	var job struct {
		ID string `json:"id"`
	}
	if err := postJSON(base+"/v1/solve", solveBody, &job); err != nil {
		log.Fatal(err)
	}
	log.Printf("Job ID: %s", job.ID)

	// Stream events until the job completes
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/jobs/" + job.ID + "/stream"}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = c.Close() }()

	for {
		var msg wsMessage
		if err := c.ReadJSON(&msg); err != nil {
			log.Fatalf("read: %v", err)
		}
		data, _ := json.Marshal(msg.Data)
		log.Printf("<- %s %s", msg.Type, data)
		if msg.Type == "complete" {
			return
		}
	}
}

func postJSON(endpoint string, body []byte, out any) error {
	resp, err := http.Post(endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: status %d", endpoint, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
