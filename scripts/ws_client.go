// Demo client: subscribes to the pathfinding progress feed, fires a
// delivery plan request, and prints the events as they arrive.
//
//	go run ./scripts [base-url]
package main

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const demoOrders = `[
  {
    "id": 1,
    "date": "2026-01-05",
    "time": "10:30",
    "requirements": {"capacity": 2},
    "delivery": {"lng": -3.188, "lat": 55.9437}
  }
]`

func main() {
	base := "http://localhost:8080"
	if len(os.Args) > 1 {
		base = strings.TrimRight(os.Args[1], "/")
	}

	wsURL, err := url.Parse(base)
	if err != nil {
		log.Fatal(err)
	}
	wsURL.Scheme = map[string]string{"http": "ws", "https": "wss"}[wsURL.Scheme]
	wsURL.Path = "/ws/pathfinding-progress"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		log.Fatalf("dial %s: %v", wsURL, err)
	}
	defer conn.Close()

	go func() {
		time.Sleep(500 * time.Millisecond)
		resp, err := http.Post(base+"/api/v1/calcDeliveryPath", "application/json",
			bytes.NewBufferString(demoOrders))
		if err != nil {
			log.Fatalf("plan request: %v", err)
		}
		defer resp.Body.Close()
		log.Printf("plan request returned %s", resp.Status)
	}()

	deadline := time.Now().Add(30 * time.Second)
	conn.SetReadDeadline(deadline)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Printf("feed closed: %v", err)
			return
		}
		fmt.Println(string(msg))
	}
}
