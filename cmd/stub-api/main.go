// A stand-in for the MailerLite API, for local testing of the relay without
// touching a real account. State lives in memory and is dropped on exit.
//
// Point the relay at it with:
//
//	MAILERLITE_BASE_URL=http://localhost:4010/api MAILERLITE_API_KEY=stub go run ./cmd/server
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type subscriberDoc struct {
	ID     string            `json:"id"`
	Email  string            `json:"email"`
	Status string            `json:"status"`
	Fields map[string]string `json:"fields"`
	Groups []groupDoc        `json:"groups,omitempty"`
}

type groupDoc struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type tagDoc struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// store is the in-memory directory state.
type store struct {
	mu          sync.Mutex
	subscribers map[string]*subscriberDoc  // by email
	groups      map[string]groupDoc        // by id
	tags        map[string]tagDoc          // by id
	members     map[string]map[string]bool // group id -> subscriber ids
	tagged      map[string]map[string]bool // tag id -> subscriber ids
}

func newStore() *store {
	return &store{
		subscribers: make(map[string]*subscriberDoc),
		groups:      make(map[string]groupDoc),
		tags:        make(map[string]tagDoc),
		members:     make(map[string]map[string]bool),
		tagged:      make(map[string]map[string]bool),
	}
}

func (s *store) subscriberByID(id string) *subscriberDoc {
	for _, sub := range s.subscribers {
		if sub.ID == id {
			return sub
		}
	}
	return nil
}

func (s *store) groupsOf(subscriberID string) []groupDoc {
	var groups []groupDoc
	for gid, members := range s.members {
		if members[subscriberID] {
			groups = append(groups, s.groups[gid])
		}
	}
	return groups
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondNotFound(w http.ResponseWriter) {
	respondJSON(w, http.StatusNotFound, map[string]string{"message": "Resource not found."})
}

func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  WARNING: This is a STUB directory API for local testing. ║")
	log.Println("║  All state is in-memory and dropped on exit.              ║")
	log.Println("║                                                           ║")
	log.Println("║  For the REAL relay server, run:                          ║")
	log.Println("║    go run cmd/server/main.go                              ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	st := newStore()

	// Seed groups so name lookups succeed out of the box.
	seed := os.Getenv("STUB_GROUPS")
	if seed == "" {
		seed = "Clientes,Carrinho Abandonado"
	}
	for _, name := range strings.Split(seed, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		id := uuid.New().String()
		st.groups[id] = groupDoc{ID: id, Name: name}
		st.members[id] = make(map[string]bool)
		log.Printf("Seeded group %q (%s)", name, id)
	}

	apiKey := os.Getenv("STUB_API_KEY")

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "mailerlite-stub",
			"warning": "THIS IS A STUB - state is in-memory only",
		})
	})

	mux.HandleFunc("GET /api/subscribers/{email}", func(w http.ResponseWriter, r *http.Request) {
		st.mu.Lock()
		defer st.mu.Unlock()

		sub, ok := st.subscribers[r.PathValue("email")]
		if !ok {
			respondNotFound(w)
			return
		}
		doc := *sub
		if r.URL.Query().Get("include") == "groups" {
			doc.Groups = st.groupsOf(sub.ID)
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"data": doc})
	})

	mux.HandleFunc("POST /api/subscribers", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email  string            `json:"email"`
			Fields map[string]string `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
			respondJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "The email field is required."})
			return
		}

		st.mu.Lock()
		defer st.mu.Unlock()

		sub, ok := st.subscribers[req.Email]
		status := http.StatusOK
		if !ok {
			sub = &subscriberDoc{
				ID:     uuid.New().String(),
				Email:  req.Email,
				Status: "active",
				Fields: map[string]string{},
			}
			st.subscribers[req.Email] = sub
			status = http.StatusCreated
			log.Printf("Created subscriber %s (%s)", req.Email, sub.ID)
		}
		for k, v := range req.Fields {
			sub.Fields[k] = v
		}
		respondJSON(w, status, map[string]interface{}{"data": *sub})
	})

	mux.HandleFunc("GET /api/groups", func(w http.ResponseWriter, r *http.Request) {
		filter := r.URL.Query().Get("filter[name]")

		st.mu.Lock()
		defer st.mu.Unlock()

		// Real API filters by substring; exact matching is the client's job.
		matched := []groupDoc{}
		for _, g := range st.groups {
			if filter == "" || strings.Contains(g.Name, filter) {
				matched = append(matched, g)
			}
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"data": matched})
	})

	mux.HandleFunc("POST /api/groups/{gid}/subscribers/{sid}", func(w http.ResponseWriter, r *http.Request) {
		gid, sid := r.PathValue("gid"), r.PathValue("sid")

		st.mu.Lock()
		defer st.mu.Unlock()

		if _, ok := st.groups[gid]; !ok {
			respondNotFound(w)
			return
		}
		sub := st.subscriberByID(sid)
		if sub == nil {
			respondNotFound(w)
			return
		}
		st.members[gid][sid] = true
		log.Printf("Added %s to group %q", sub.Email, st.groups[gid].Name)
		respondJSON(w, http.StatusOK, map[string]interface{}{"data": *sub})
	})

	mux.HandleFunc("DELETE /api/subscribers/{sid}/groups/{gid}", func(w http.ResponseWriter, r *http.Request) {
		gid, sid := r.PathValue("gid"), r.PathValue("sid")

		st.mu.Lock()
		defer st.mu.Unlock()

		members, ok := st.members[gid]
		if !ok {
			respondNotFound(w)
			return
		}
		delete(members, sid)
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/tags", func(w http.ResponseWriter, r *http.Request) {
		st.mu.Lock()
		defer st.mu.Unlock()

		tags := []tagDoc{}
		for _, t := range st.tags {
			tags = append(tags, t)
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"data": tags})
	})

	mux.HandleFunc("POST /api/tags", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string   `json:"name"`
			Subscribers []string `json:"subscribers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			respondJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "The name field is required."})
			return
		}

		st.mu.Lock()
		defer st.mu.Unlock()

		var tag tagDoc
		found := false
		for _, t := range st.tags {
			if t.Name == req.Name {
				tag = t
				found = true
				break
			}
		}
		if !found {
			tag = tagDoc{ID: uuid.New().String(), Name: req.Name}
			st.tags[tag.ID] = tag
			st.tagged[tag.ID] = make(map[string]bool)
			log.Printf("Created tag %q (%s)", tag.Name, tag.ID)
		}
		for _, sid := range req.Subscribers {
			st.tagged[tag.ID][sid] = true
		}
		respondJSON(w, http.StatusCreated, map[string]interface{}{"data": tag})
	})

	mux.HandleFunc("DELETE /api/tags/{tid}/subscribers/{sid}", func(w http.ResponseWriter, r *http.Request) {
		tid, sid := r.PathValue("tid"), r.PathValue("sid")

		st.mu.Lock()
		defer st.mu.Unlock()

		tagged, ok := st.tagged[tid]
		if !ok {
			respondNotFound(w)
			return
		}
		delete(tagged, sid)
		w.WriteHeader(http.StatusNoContent)
	})

	handler := http.Handler(mux)
	if apiKey != "" {
		// Enforce bearer auth on the API surface, like the real thing.
		inner := handler
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				if r.Header.Get("Authorization") != "Bearer "+apiKey {
					respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
					return
				}
			}
			inner.ServeHTTP(w, r)
		})
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4010"
	}

	log.Printf("Stub directory API listening on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
