package main

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/streamqa/reconcile/internal/runner"
)

// maxUploadBytes bounds the multipart form kept in memory per request.
const maxUploadBytes = 32 << 20

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the progress-streaming reconciliation server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := newEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		r.Post("/process-stream", handleProcessStream(env))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// handleProcessStream accepts the two files as multipart form fields
// (inputFile, qaTextFile) and streams runner events back as server-sent
// events. The final complete event carries the workbook base64-encoded.
func handleProcessStream(env *env) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, `{"error":"streaming unsupported"}`, http.StatusInternalServerError)
			return
		}

		if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, `{"error":"invalid multipart form"}`, http.StatusBadRequest)
			return
		}

		inputName, inputData := readFormFile(req, "inputFile")
		transcriptName, transcriptData := readFormFile(req, "qaTextFile")

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		sendEvent := func(ev runner.Event) {
			payload, err := json.Marshal(ev)
			if err != nil {
				zap.L().Error("failed to encode progress event", zap.Error(err))
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}

		// A dropped connection cancels the run via the request context;
		// the runner emits the terminal event before returning.
		_, err := env.Runner.Run(req.Context(), runner.Request{
			InputName:      inputName,
			InputData:      inputData,
			TranscriptName: transcriptName,
			TranscriptData: transcriptData,
		}, sendEvent)
		if err != nil {
			zap.L().Warn("process-stream run failed", zap.Error(err))
		}
	}
}

// readFormFile reads one multipart file field, returning empty values when
// the field is absent; the runner validates presence.
func readFormFile(req *http.Request, field string) (string, []byte) {
	file, header, err := req.FormFile(field)
	if err != nil {
		return "", nil
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return header.Filename, nil
	}
	return header.Filename, data
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
