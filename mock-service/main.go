package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Record struct {
	Topic     string          `json:"topic"`
	Key       *string         `json:"key"`
	Value     json.RawMessage `json:"value"`
	Partition int32           `json:"partition"`
	Offset    int64           `json:"offset"`
}

type instance struct {
	group     string
	committed int64
	position  int64
}

type mockProxy struct {
	addr      string
	mu        sync.Mutex
	instances map[string]*instance
	log       []Record
}

func main() {
	p := &mockProxy{
		addr:      "http://localhost:8082",
		instances: make(map[string]*instance),
	}

	http.HandleFunc("/consumers/", p.route)
	http.HandleFunc("/topics/", p.handleProduce)

	fmt.Println("Started mock queue proxy on port 8082")

	log.Fatal(http.ListenAndServe(":8082", nil))
}

// route dispatches /consumers/{group}[/instances/{id}[/offsets|/topics/{topic}]].
func (p *mockProxy) route(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 2 && r.Method == http.MethodPost:
		p.handleCreate(w, parts[1])
	case len(parts) == 4 && parts[2] == "instances" && r.Method == http.MethodDelete:
		p.handleDestroy(w, parts[3])
	case len(parts) == 5 && parts[4] == "offsets" && r.Method == http.MethodPost:
		p.handleCommit(w, parts[3])
	case len(parts) == 6 && parts[4] == "topics" && r.Method == http.MethodGet:
		p.handleConsume(w, parts[3], parts[5])
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (p *mockProxy) handleCreate(w http.ResponseWriter, group string) {
	id := uuid.NewString()

	p.mu.Lock()
	p.instances[id] = &instance{group: group}
	p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"instance_id": id,
		"base_uri":    fmt.Sprintf("%s/consumers/%s/instances/%s", p.addr, group, id),
	})

	fmt.Printf("Consumer instance created: %s - group: %s\n", id, group)
}

func (p *mockProxy) handleConsume(w http.ResponseWriter, id, topic string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	inst, ok := p.instances[id]
	if !ok {
		http.Error(w, "Consumer instance not found", http.StatusNotFound)
		return
	}

	records := make([]Record, 0)
	for _, rec := range p.log {
		if rec.Topic == topic && rec.Offset >= inst.position {
			records = append(records, rec)
		}
	}
	if len(records) > 0 {
		inst.position = records[len(records)-1].Offset + 1
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

func (p *mockProxy) handleCommit(w http.ResponseWriter, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	inst, ok := p.instances[id]
	if !ok {
		http.Error(w, "Consumer instance not found", http.StatusNotFound)
		return
	}
	inst.committed = inst.position

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("[]"))
}

func (p *mockProxy) handleDestroy(w http.ResponseWriter, id string) {
	p.mu.Lock()
	_, ok := p.instances[id]
	delete(p.instances, id)
	p.mu.Unlock()

	if !ok {
		http.Error(w, "Consumer instance not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	fmt.Printf("Consumer instance destroyed: %s\n", id)
}

// handleProduce appends records posted as {"records": [{"value": ...}]}.
func (p *mockProxy) handleProduce(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	topic := strings.TrimPrefix(r.URL.Path, "/topics/")

	var payload struct {
		Records []struct {
			Key   *string         `json:"key"`
			Value json.RawMessage `json:"value"`
		} `json:"records"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Error decoding payload", http.StatusBadRequest)
		return
	}

	p.mu.Lock()
	for _, rec := range payload.Records {
		p.log = append(p.log, Record{
			Topic:  topic,
			Key:    rec.Key,
			Value:  rec.Value,
			Offset: int64(len(p.log)),
		})
	}
	p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"accepted":  len(payload.Records),
		"timestamp": time.Now(),
	})
}
