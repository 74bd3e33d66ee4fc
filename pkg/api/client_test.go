package api_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/killallgit/liftchat/pkg/api"
	"github.com/killallgit/liftchat/pkg/chat"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Suite")
}

var errTimeout = errors.New("attempt timed out")

func collect(events *[]chat.StreamEvent) func(chat.StreamEvent) error {
	return func(e chat.StreamEvent) error {
		*events = append(*events, e)
		return nil
	}
}

func kinds(events []chat.StreamEvent) []chat.EventKind {
	out := make([]chat.EventKind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

var _ = Describe("Client", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc
		client  *api.Client
		token   string
		query   chat.Query
	)

	BeforeEach(func() {
		token = ""
		query = chat.Query{Text: "how do I deadlift?", SessionID: "s-1"}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
		client = api.NewClient(api.Options{
			UserAgent: "liftchat/test",
			Token:     func(context.Context) string { return token },
		})
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("Buffered", func() {
		It("should post the query and decode reply and sources", func() {
			token = "tok"
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal("/chat"))
				Expect(r.Header.Get("Authorization")).To(Equal("Bearer tok"))
				Expect(r.Header.Get("User-Agent")).To(Equal("liftchat/test"))
				body, _ := io.ReadAll(r.Body)
				Expect(body).To(MatchJSON(`{"query":"how do I deadlift?","session_id":"s-1"}`))

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"response":"Hinge.","sources":[{"title":"Doc","url":"http://d"}]}`))
			}

			reply, err := client.Buffered(context.Background(), server.URL+"/", query)
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text).To(Equal("Hinge."))
			Expect(reply.Sources).To(Equal([]chat.Source{{Title: "Doc", URL: "http://d"}}))
		})

		It("should omit the authorization header without a token", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Header.Get("Authorization")).To(BeEmpty())
				w.Write([]byte(`{"response":"ok"}`))
			}

			reply, err := client.Buffered(context.Background(), server.URL, query)
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Sources).To(BeNil())
		})

		It("should return an HTTPError carrying status and detail", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"detail":"slow down"}`))
			}

			_, err := client.Buffered(context.Background(), server.URL, query)
			var herr *api.HTTPError
			Expect(errors.As(err, &herr)).To(BeTrue())
			Expect(herr.StatusCode()).To(Equal(http.StatusTooManyRequests))
			Expect(herr.Detail).To(Equal("slow down"))
		})

		It("should reject a body without a response field", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"answer":"wrong shape"}`))
			}

			_, err := client.Buffered(context.Background(), server.URL, query)
			Expect(err).To(HaveOccurred())
		})

		It("should report the context cause when cut short", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				<-r.Context().Done()
			}

			ctx, cancel := context.WithCancelCause(context.Background())
			time.AfterFunc(20*time.Millisecond, func() { cancel(errTimeout) })

			_, err := client.Buffered(ctx, server.URL, query)
			Expect(err).To(MatchError(errTimeout))
		})
	})

	Describe("Stream", func() {
		It("should send query parameters and deliver events through done", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodGet))
				Expect(r.URL.Path).To(Equal("/chat/stream"))
				Expect(r.URL.Query().Get("query")).To(Equal("how do I deadlift?"))
				Expect(r.URL.Query().Get("session_id")).To(Equal("s-1"))
				Expect(r.Header.Get("Accept")).To(Equal("text/event-stream"))

				w.Header().Set("Content-Type", "text/event-stream")
				fmt.Fprint(w, "data: {\"content\":\"A\"}\n\n")
				fmt.Fprint(w, "event: heartbeat\ndata: \n\n")
				fmt.Fprint(w, "data: {\"content\":\"B\"}\n\n")
				fmt.Fprint(w, "event: done\ndata: \n\n")
				fmt.Fprint(w, "data: {\"content\":\"ignored\"}\n\n")
			}

			var events []chat.StreamEvent
			err := client.Stream(context.Background(), server.URL, query, collect(&events))
			Expect(err).NotTo(HaveOccurred())
			Expect(kinds(events)).To(Equal([]chat.EventKind{
				chat.EventOpen, chat.EventData, chat.EventHeartbeat, chat.EventData, chat.EventDone,
			}))
			Expect(events[1].Data).To(Equal(`{"content":"A"}`))
		})

		It("should post JSON when configured for post", func() {
			client = api.NewClient(api.Options{StreamMethod: "POST"})
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPost))
				body, _ := io.ReadAll(r.Body)
				Expect(body).To(MatchJSON(`{"query":"how do I deadlift?","session_id":"s-1"}`))
				fmt.Fprint(w, "data: [DONE]\n\n")
			}

			var events []chat.StreamEvent
			err := client.Stream(context.Background(), server.URL, query, collect(&events))
			Expect(err).NotTo(HaveOccurred())
			Expect(kinds(events)).To(Equal([]chat.EventKind{chat.EventOpen, chat.EventDone}))
		})

		It("should fail before open on a non-2xx status", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusGatewayTimeout)
			}

			var events []chat.StreamEvent
			err := client.Stream(context.Background(), server.URL, query, collect(&events))
			var herr *api.HTTPError
			Expect(errors.As(err, &herr)).To(BeTrue())
			Expect(herr.StatusCode()).To(Equal(http.StatusGatewayTimeout))
			Expect(events).To(BeEmpty())
		})

		It("should treat an end without done as an error", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "data: {\"content\":\"A\"}\n\n")
			}

			var events []chat.StreamEvent
			err := client.Stream(context.Background(), server.URL, query, collect(&events))
			Expect(err).To(MatchError(api.ErrStreamEnded))
			Expect(kinds(events)).To(Equal([]chat.EventKind{chat.EventOpen, chat.EventData}))
		})

		It("should stop at a server error event", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "event: error\ndata: model overloaded\n\n")
			}

			var events []chat.StreamEvent
			err := client.Stream(context.Background(), server.URL, query, collect(&events))
			var serr *api.ServerEventError
			Expect(errors.As(err, &serr)).To(BeTrue())
			Expect(serr.Message).To(Equal("model overloaded"))
			Expect(kinds(events)).To(Equal([]chat.EventKind{chat.EventOpen, chat.EventError}))
		})

		It("should stop when the handler returns an error", func() {
			stop := errors.New("stop")
			handler = func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "data: a\n\ndata: b\n\n")
			}

			calls := 0
			err := client.Stream(context.Background(), server.URL, query, func(e chat.StreamEvent) error {
				calls++
				if e.Kind == chat.EventData {
					return stop
				}
				return nil
			})
			Expect(err).To(MatchError(stop))
			Expect(calls).To(Equal(2))
		})

		It("should report the context cause when a stalled stream is cancelled", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "data: {\"content\":\"A\"}\n\n")
				w.(http.Flusher).Flush()
				<-r.Context().Done()
			}

			ctx, cancel := context.WithCancelCause(context.Background())
			err := client.Stream(ctx, server.URL, query, func(e chat.StreamEvent) error {
				if e.Kind == chat.EventData {
					cancel(errTimeout)
				}
				return nil
			})
			Expect(err).To(MatchError(errTimeout))
		})
	})

	Describe("CheckHealth", func() {
		It("should treat any status below 500 as reachable", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}

			status := client.CheckHealth(context.Background(), server.URL)
			Expect(status.Available).To(BeTrue())
			Expect(status.StatusCode).To(Equal(http.StatusNotFound))
			Expect(status.Error).NotTo(HaveOccurred())
		})

		It("should flag server errors", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}

			status := client.CheckHealth(context.Background(), server.URL)
			Expect(status.Available).To(BeFalse())
			Expect(status.Error).To(HaveOccurred())
		})

		It("should flag unreachable backends", func() {
			server.Close()

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			status := client.CheckHealth(ctx, server.URL)
			Expect(status.Available).To(BeFalse())
			Expect(status.StatusCode).To(BeZero())
		})
	})
})
