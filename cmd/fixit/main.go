// Command fixit ingests appliance repair manuals and answers repair
// questions against them.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/fixit-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/fixit-cli/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/fixit-cli/internal/adapters/driven/embedding/tfidf"
	"github.com/custodia-labs/fixit-cli/internal/adapters/driven/rerank/tei"
	"github.com/custodia-labs/fixit-cli/internal/adapters/driven/statestore/jsonfile"
	"github.com/custodia-labs/fixit-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/fixit-cli/internal/adapters/driven/vectorstore/pinecone"
	"github.com/custodia-labs/fixit-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/fixit-cli/internal/chunker"
	"github.com/custodia-labs/fixit-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/fixit-cli/internal/core/services"
	"github.com/custodia-labs/fixit-cli/internal/logger"
	"github.com/custodia-labs/fixit-cli/internal/parsers/pdf"
)

func main() {
	// A local .env is a development convenience; real configuration
	// lives in ~/.fixit/config.toml.
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dataDir := filepath.Join(home, ".fixit", "data")

	docStore, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("init document store: %w", err)
	}
	defer docStore.Close()

	stateStore, err := jsonfile.NewStore(filepath.Join(dataDir, "ingest_state.json"))
	if err != nil {
		return fmt.Errorf("init ingest state: %w", err)
	}

	svcs := cli.Services{
		Documents: docStore,
		States:    stateStore,
		Config:    configStore,
	}

	// Remote services are optional at startup. Commands that need a
	// missing one fail with a clear message instead of blocking
	// everything else (e.g. document list works offline).
	embedder := buildEmbedder(configStore)
	vectors := buildVectorStore(configStore)
	reranker := buildReranker(configStore)
	namespace := configStore.GetString(file.KeyPineconeNamespace)

	if embedder != nil && vectors != nil {
		if err := pdf.CheckAvailable(); err != nil {
			logger.Warn("%v\n%s", err, pdf.InstallInstructions())
		}
		svcs.Ingest = services.NewIngestOrchestrator(
			filesystem.New(),
			pdf.New(),
			chunker.New(),
			embedder,
			tfidf.New(),
			vectors,
			stateStore,
			docStore,
			namespace,
			filepath.Join(dataDir, "images"),
			configStore.GetInt(file.KeyIngestBatchSize),
		)
		if reranker != nil {
			svcs.Retrieval = services.NewRetrievalService(embedder, vectors, reranker, namespace)
		}
	}

	cli.SetServices(svcs)
	return cli.Execute()
}

func buildEmbedder(cfg *file.ConfigStore) *openai.EmbeddingService {
	apiKey := cfg.GetString(file.KeyEmbeddingAPIKey)
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		logger.Debug("Embedding service not configured")
		return nil
	}

	svc, err := openai.NewEmbeddingService(openai.Config{
		APIKey:  apiKey,
		BaseURL: cfg.GetString(file.KeyEmbeddingBaseURL),
		Model:   cfg.GetString(file.KeyEmbeddingModel),
	})
	if err != nil {
		logger.Warn("Embedding service unavailable: %v", err)
		return nil
	}
	return svc
}

func buildVectorStore(cfg *file.ConfigStore) *pinecone.Store {
	host := cfg.GetString(file.KeyPineconeHost)
	if host == "" {
		host = os.Getenv("PINECONE_HOST")
	}
	apiKey := cfg.GetString(file.KeyPineconeAPIKey)
	if apiKey == "" {
		apiKey = os.Getenv("PINECONE_API_KEY")
	}
	if host == "" || apiKey == "" {
		logger.Debug("Vector store not configured")
		return nil
	}

	store, err := pinecone.NewStore(pinecone.Config{Host: host, APIKey: apiKey})
	if err != nil {
		logger.Warn("Vector store unavailable: %v", err)
		return nil
	}
	return store
}

func buildReranker(cfg *file.ConfigStore) *tei.Reranker {
	baseURL := cfg.GetString(file.KeyRerankerBaseURL)
	if baseURL == "" {
		baseURL = os.Getenv("RERANKER_URL")
	}
	if baseURL == "" {
		logger.Debug("Reranker not configured")
		return nil
	}

	reranker, err := tei.NewReranker(tei.Config{
		BaseURL: baseURL,
		APIKey:  cfg.GetString(file.KeyRerankerAPIKey),
	})
	if err != nil {
		logger.Warn("Reranker unavailable: %v", err)
		return nil
	}
	return reranker
}
