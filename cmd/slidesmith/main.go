package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"slidesmith/internal/author"
	"slidesmith/internal/dataneed"
	"slidesmith/internal/deck"
	"slidesmith/internal/generate"
	"slidesmith/internal/intent"
	"slidesmith/internal/llm"
	"slidesmith/internal/modify"
	"slidesmith/internal/pipeline"
	"slidesmith/internal/plan"
	"slidesmith/internal/query"
)

func main() {
	model := flag.String("model", "gemini-2.5-flash", "Gemini model id for interpret/plan/detect")
	authorModel := flag.String("author-model", "gemini-2.5-flash", "Gemini model id for slide authoring")
	outDir := flag.String("out", "out", "directory for rendered slide files")
	fake := flag.Bool("fake", false, "run offline with deterministic fake model output")
	workers := flag.Int("workers", generate.DefaultMaxWorkers, "max concurrent slide builds")
	repairs := flag.Int("repairs", 1, "max validate/repair round-trips per slide")
	verbose := flag.Bool("verbose", false, "log every model round-trip")
	flag.Parse()
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal(err)
	}

	_ = godotenv.Load()
	ctx := context.Background()

	var ctrlCli, authorCli llm.LLMClient
	if *fake {
		fc := llm.NewFakeClient()
		ctrlCli, authorCli = fc, fc
	} else {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			log.Fatal("GEMINI_API_KEY is not set")
		}
		var err error
		ctrlCli, err = llm.NewGeminiClient(ctx, apiKey, *model)
		if err != nil {
			log.Fatal(err)
		}
		defer ctrlCli.Close()
		if *authorModel == *model {
			authorCli = ctrlCli
		} else {
			authorCli, err = llm.NewGeminiClient(ctx, apiKey, *authorModel)
			if err != nil {
				log.Fatal(err)
			}
			defer authorCli.Close()
		}
	}
	if *verbose {
		hook := &logHook{}
		ctrlCli = llm.WithHook(ctrlCli, hook)
		authorCli = llm.WithHook(authorCli, hook)
	}
	log.Printf("control model: %s, author model: %s", ctrlCli.Name(), authorCli.Name())

	var q query.Client = query.Empty{}
	if dsn := os.Getenv("WAREHOUSE_PG_DSN"); dsn != "" && !*fake {
		wh, err := query.NewWarehouse(ctx, dsn, ctrlCli)
		if err != nil {
			log.Printf("warehouse unavailable, continuing without data: %v", err)
		} else {
			defer wh.Close()
			cached, err := query.NewCached(wh, 0)
			if err != nil {
				log.Fatal(err)
			}
			q = cached
		}
	}

	builder := &generate.Builder{
		Author:     &author.Author{LLM: authorCli},
		Detector:   &dataneed.Detector{LLM: ctrlCli},
		Query:      q,
		MaxRepairs: *repairs,
	}
	p := &pipeline.Pipeline{
		Interpreter: &intent.Interpreter{LLM: ctrlCli},
		Planner:     &plan.Planner{LLM: ctrlCli},
		Coordinator: &generate.Coordinator{Builder: builder, MaxWorkers: *workers},
		Executor:    &modify.Executor{Builder: builder},
	}

	st := deck.NewState()
	fmt.Println("slidesmith ready. Describe a deck, or 'exit' to quit.")
	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		statuses, err := p.ProcessMessage(ctx, st, line)
		if err != nil {
			log.Printf("cycle failed: %v", err)
			continue
		}
		for _, s := range statuses {
			if s.IsGenerated {
				saveSlide(*outDir, s)
			}
			fmt.Printf("  %2d. %-40s generated=%v valid=%v\n", s.Position, s.Title, s.IsGenerated, s.IsValid)
		}
		if n := len(st.Errors); n > 0 {
			fmt.Printf("  (%d issue(s) this session; latest: %s)\n", n, st.Errors[n-1])
		}
	}
	log.Println("session ended →", *outDir)
}

type logHook struct{}

func (logHook) Before(ctx context.Context, phase, prompt string) {
	log.Printf("[hook] → %s: %d bytes", phase, len(prompt))
}

func (logHook) After(ctx context.Context, phase, raw string, err error) {
	if err != nil {
		log.Printf("[hook] ← %s: error: %v", phase, err)
		return
	}
	log.Printf("[hook] ← %s: %d bytes", phase, len(raw))
}

func saveSlide(dir string, s deck.SlideStatus) {
	name := fmt.Sprintf("slide_%d.html", s.ID)
	if err := os.WriteFile(filepath.Join(dir, name), []byte(s.Content), 0o644); err != nil {
		log.Printf("failed to write %s: %v", name, err)
	}
}
