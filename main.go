package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"log"
	"math/big"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hatroom/internal/common"
	"hatroom/internal/config"
	"hatroom/internal/game"
	"hatroom/internal/palette"
	"hatroom/internal/realtime"
	"hatroom/internal/session"
)

type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("responsewriter does not support hijacking")
	}
	return h.Hijack()
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *responseRecorder) Push(target string, opts *http.PushOptions) error {
	if p, ok := r.ResponseWriter.(http.Pusher); ok {
		return p.Push(target, opts)
	}
	return http.ErrNotSupported
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
		log.Printf(
			"request: status=%d bytes=%d dur=%s method=%s path=%s remote=%s xff=%q ua=%q",
			rec.status,
			rec.bytes,
			time.Since(start).Truncate(time.Millisecond),
			r.Method,
			r.URL.Path,
			r.RemoteAddr,
			xff,
			r.UserAgent(),
		)
	})
}

func ensureTLSCert(certPath, keyPath string) error {
	certInfo, certErr := os.Stat(certPath)
	keyInfo, keyErr := os.Stat(keyPath)
	if certErr == nil && keyErr == nil && certInfo.Mode().IsRegular() && keyInfo.Mode().IsRegular() {
		return nil
	}

	if (certErr == nil) != (keyErr == nil) {
		log.Printf("TLS cert/key mismatch, regenerating: cert=%v key=%v", certErr, keyErr)
	}

	dir := filepath.Dir(certPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return err
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return err
	}

	now := time.Now()
	template := x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName: "hatroom",
		},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("::1")},
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return err
	}

	certFile, err := os.OpenFile(certPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer certFile.Close()

	if err := pem.Encode(certFile, &pem.Block{Type: "CERTIFICATE", Bytes: derBytes}); err != nil {
		return err
	}

	keyFile, err := os.OpenFile(keyPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer keyFile.Close()

	if err := pem.Encode(keyFile, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)}); err != nil {
		return err
	}

	return nil
}

func getRouter(sessionManager *session.Manager, settings *config.SettingsType, registry *game.Registry, gateway *realtime.Gateway) http.Handler {

	router := chi.NewRouter()
	router.Use(sessionManager.LoadAndSave)

	staticDir := settings.Get(config.STATIC_DIR)
	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	router.Get("/", handleLoginGet(sessionManager))
	router.Post("/join", handleJoinPost(sessionManager))
	router.Get("/room/{roomID}", handleRoomGet)
	router.Get("/avatar/{playerID}/{frame}.svg", avatarHandler(registry, staticDir))

	router.Handle("/metrics", promhttp.Handler())

	router.HandleFunc("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok\n")); err != nil {
			log.Printf("failed to write health response: %v", err)
		}
	})

	apiCfg := huma.DefaultConfig("HatRoom", "1.0.0")
	apiCfg.OpenAPIPath = ""
	apiCfg.DocsPath = ""
	apiCfg.SchemasPath = ""
	api := humachi.New(router, apiCfg)
	registerAPI(api, registry)

	// Websockets bypass chi and the session middleware; a hijacked
	// connection cannot carry session cookie writes anyway.
	wsHandler := common.EnrichContext(http.HandlerFunc(gateway.HandleSocket))

	return logRequests(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			wsHandler.ServeHTTP(w, r)
			return
		}
		router.ServeHTTP(w, r)
	}))
}

func registerAPI(api huma.API, registry *game.Registry) {
	group := huma.NewGroup(api, "/api")

	huma.Get(group, "/rooms", func(_ context.Context, _ *struct{}) (*huma.StreamResponse, error) {
		return &huma.StreamResponse{
			Body: func(ctx huma.Context) {
				_, w := humachi.Unwrap(ctx)
				writeJSON(w, http.StatusOK, roomsResponse{
					Rooms: registry.Rooms(),
				})
			},
		}, nil
	}, func(op *huma.Operation) {
		op.Hidden = true
	})

	huma.Get(group, "/palette", func(_ context.Context, _ *struct{}) (*huma.StreamResponse, error) {
		return &huma.StreamResponse{
			Body: func(ctx huma.Context) {
				_, w := humachi.Unwrap(ctx)
				writeJSON(w, http.StatusOK, paletteResponse{
					Colors: palette.Entries(),
				})
			},
		}, nil
	}, func(op *huma.Operation) {
		op.Hidden = true
	})
}

func main() {

	settings := config.NewSettingType(true)
	tlsEnabled := settings.IsTrue(config.TLS_ENABLE)

	registry := game.NewRegistry(settings.GetDuration(config.PLAYER_META_TTL, 30*time.Minute))
	gateway := realtime.NewGateway(registry, realtime.Conf{
		ReadBuffer:  settings.GetInt(config.WS_READ_BUFFER, 4096),
		WriteBuffer: settings.GetInt(config.WS_WRITE_BUFFER, 4096),
	})
	sessionManager := session.NewManager(tlsEnabled)

	mux := getRouter(sessionManager, settings, registry, gateway)

	srv := &http.Server{
		Addr:    settings.Get(config.LISTEN_ADDR),
		Handler: mux,

		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,

		ConnContext: func(ctx context.Context, c net.Conn) context.Context {
			_ = c.SetDeadline(time.Now().Add(8 * time.Hour))
			return ctx
		},
	}

	if !tlsEnabled {
		log.Printf("Starting HatRoom on %s", srv.Addr)
		log.Fatal(srv.ListenAndServe())
	}

	srv.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	srv.TLSNextProto = make(map[string]func(*http.Server, *tls.Conn, http.Handler))

	certPath := settings.Get(config.TLS_CERT)
	keyPath := settings.Get(config.TLS_KEY)

	if err := ensureTLSCert(certPath, keyPath); err != nil {
		log.Fatalf("failed to ensure TLS certs: %v", err)
	}

	log.Printf("Starting HatRoom with TLS on %s", srv.Addr)
	log.Fatal(srv.ListenAndServeTLS(certPath, keyPath))
}
