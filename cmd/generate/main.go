// Command generate produces study material for a single document and prints
// it as JSON, or as raw text with -stream.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"study-byte/internal/adapter/llm"
	"study-byte/internal/config"
	"study-byte/internal/domain"
	"study-byte/internal/extract"
	"study-byte/internal/logger"
	"study-byte/internal/service"
)

// options are the parsed command-line flags
type options struct {
	file       string
	artifact   string
	count      int
	length     string
	difficulty string
	stream     bool
}

const artifactStudyPack = "study_pack"

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.StringVar(&opts.file, "file", "", "Document to read (.txt, .pdf or .docx) (required)")
	fs.StringVar(&opts.artifact, "artifact", string(domain.ArtifactSummary),
		"Artifact to generate: summary, flashcards, quiz, scenario_exam, study_pack")
	fs.IntVar(&opts.count, "count", 0, "Number of flashcards or questions (0 uses the configured default)")
	fs.StringVar(&opts.length, "length", "", "Summary length: brief, detailed, comprehensive")
	fs.StringVar(&opts.difficulty, "difficulty", "", "Scenario difficulty: easy, medium, hard")
	fs.BoolVar(&opts.stream, "stream", false, "Stream the summary as it is generated")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.file == "" {
		return opts, fmt.Errorf("-file is required")
	}
	opts.artifact = strings.ToLower(opts.artifact)
	switch domain.ArtifactType(opts.artifact) {
	case domain.ArtifactSummary, domain.ArtifactFlashcards, domain.ArtifactQuiz, domain.ArtifactScenarioExam:
	default:
		if opts.artifact != artifactStudyPack {
			return opts, fmt.Errorf("unknown artifact %q", opts.artifact)
		}
	}
	if opts.stream && opts.artifact != string(domain.ArtifactSummary) {
		return opts, fmt.Errorf("-stream is only supported for summaries")
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway, err := llm.New(ctx, cfg.LLM, logger.Get().Named("llm"))
	if err != nil {
		log.Fatalf("Failed to create model gateway: %v", err)
	}
	extractor := extract.New(extract.Options{
		MaxFileSize: cfg.Extraction.MaxFileSize,
		Logger:      logger.Get().Named("extract"),
	})
	svc := service.NewStudyService(extractor, gateway, cfg.Defaults)

	if err := run(ctx, opts, svc, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// run extracts opts.file and writes the requested artifact to out.
func run(ctx context.Context, opts options, svc service.StudyService, out io.Writer) error {
	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	text, err := svc.Extract(ctx, f, opts.file)
	if err != nil {
		return err
	}

	if opts.stream {
		stream, err := svc.SummarizeStream(ctx, text)
		if err != nil {
			return err
		}
		for chunk, err := range stream {
			if err != nil {
				return err
			}
			if _, err := io.WriteString(out, chunk); err != nil {
				return err
			}
		}
		_, err = io.WriteString(out, "\n")
		return err
	}

	var result interface{}
	switch opts.artifact {
	case string(domain.ArtifactSummary):
		result, err = svc.Summarize(ctx, text, domain.SummaryLength(opts.length))
	case string(domain.ArtifactFlashcards):
		var cards []domain.Flashcard
		cards, err = svc.GenerateFlashcards(ctx, text, opts.count)
		result = map[string]interface{}{"flashcards": cards}
	case string(domain.ArtifactQuiz):
		result, err = svc.GenerateQuiz(ctx, text, opts.count)
	case string(domain.ArtifactScenarioExam):
		result, err = svc.GenerateScenarioExam(ctx, text, opts.count, domain.ScenarioDifficulty(opts.difficulty))
	case artifactStudyPack:
		result, err = svc.GenerateStudyPack(ctx, text, service.StudyPackOptions{
			SummaryLength:     domain.SummaryLength(opts.length),
			FlashcardCount:    opts.count,
			QuizQuestionCount: opts.count,
		})
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
