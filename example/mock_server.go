package main

import (
	"net/http"
	"sync/atomic"
)

// StartMockTargetServer serves two probe targets on addr:
//
//	/health  always answers 200
//	/flaky   alternates between 200 and 503
//
// It blocks, so run it in a goroutine.
func StartMockTargetServer(addr string) {
	var flakyCount atomic.Int64

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/flaky", func(w http.ResponseWriter, r *http.Request) {
		if flakyCount.Add(1)%2 == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	_ = http.ListenAndServe(addr, mux)
}
