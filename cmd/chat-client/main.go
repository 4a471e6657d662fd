// Manual smoke client for the relay channel: binds a call, asks one FAQ
// question and one free-form question, and prints everything the server
// sends back.
package main

import (
	"log"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/colorbar-salon/voice-agent/messages"
)

func main() {
	url := "ws://localhost:8080/ws"
	if len(os.Args) > 1 {
		url = os.Args[1]
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			log.Printf("💬 Received: %s", raw)
		}
	}()

	send(conn, messages.EventCall, map[string]string{"call_id": "smoke-test-call"})
	send(conn, messages.EventMessage, map[string]string{"message": "What services do you offer?"})
	send(conn, messages.EventMessage, map[string]string{"message": "Can I book a haircut for tomorrow morning?"})

	select {
	case <-done:
	case <-time.After(15 * time.Second):
	}
	log.Println("Done")
}

func send(conn *websocket.Conn, event string, payload any) {
	rawPayload, err := sonic.Marshal(payload)
	if err != nil {
		log.Fatalf("Failed to encode payload: %v", err)
	}
	data, err := sonic.Marshal(messages.ClientMessage{Event: event, Payload: rawPayload})
	if err != nil {
		log.Fatalf("Failed to encode message: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Fatalf("Failed to send: %v", err)
	}
	time.Sleep(500 * time.Millisecond)
}
