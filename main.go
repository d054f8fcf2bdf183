package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/versebot/internal/content"
	"github.com/example/versebot/internal/database"
	"github.com/example/versebot/internal/fsrs"
	"github.com/example/versebot/internal/grouping"
	"github.com/example/versebot/internal/review"
	"github.com/example/versebot/internal/scheduler"
	"github.com/example/versebot/pkg/models"
)

// logNotifier writes the daily reminder to the process log. Real delivery
// (push, chat) is wired in by the surrounding application.
type logNotifier struct{}

func (logNotifier) SendDueReminder(summary models.DueSummary) error {
	log.Printf("reminder: %d units due (%d new, %d learning, %d review)",
		summary.Due, summary.New, summary.Learning, summary.Review)
	return nil
}

// enrollChapter partitions the given chapter using GROUP_STRATEGY and
// GROUP_SIZE and creates progress records for every resulting group.
// Existing records keep the group slicing they were enrolled under.
func enrollChapter(ctx context.Context, chapters *database.ChapterRepository, groups *database.GroupRepository, svc *review.Service, chapterEnv string) error {
	chapter, err := strconv.Atoi(chapterEnv)
	if err != nil {
		return fmt.Errorf("invalid ENROLL_CHAPTER %q: %w", chapterEnv, err)
	}

	strategy := models.Strategy(os.Getenv("GROUP_STRATEGY"))
	if strategy == "" {
		strategy = models.StrategyFixed
	}
	if !strategy.IsValid() {
		return fmt.Errorf("invalid GROUP_STRATEGY %q", strategy)
	}
	size := grouping.DefaultFallbackSize
	if sizeEnv := os.Getenv("GROUP_SIZE"); sizeEnv != "" {
		size, err = strconv.Atoi(sizeEnv)
		if err != nil {
			return fmt.Errorf("invalid GROUP_SIZE %q: %w", sizeEnv, err)
		}
	}

	result, err := grouping.New(groups, chapters).CreateGroups(ctx, chapter, strategy, size)
	if err != nil {
		return err
	}
	if result.Degraded {
		log.Printf("chapter %d: %s boundaries unavailable, using fixed groups of %d",
			chapter, strategy, grouping.DefaultFallbackSize)
	}

	enrolled := 0
	for _, g := range result.Groups {
		records, err := svc.EnrollGroup(ctx, g)
		if err != nil {
			return fmt.Errorf("enroll group %d-%d: %w", g.StartVerse, g.EndVerse, err)
		}
		enrolled += len(records)
	}
	log.Printf("Chapter %d: %d groups (%s), %d new records enrolled",
		chapter, len(result.Groups), strategy, enrolled)
	return nil
}

func main() {
	// .env is optional; environment variables win either way
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env: %v", err)
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	progressRepo := database.NewProgressRepository(db)
	groupRepo := database.NewGroupRepository(db)
	chapterRepo := database.NewChapterRepository(db)
	statsRepo := database.NewSessionStatsRepository(db)
	paramsRepo := database.NewParamsRepository(db)

	// Import chapter metadata when a content file is configured.
	if path := os.Getenv("CONTENT_FILE"); path != "" {
		importer := content.NewImporter(chapterRepo)
		result, err := importer.ImportFile(ctx, content.DefaultImportConfig(path))
		if err != nil {
			log.Fatalf("Failed to import content from %s: %v", path, err)
		}
		log.Printf("Imported %d/%d chapters from %s", result.Imported, result.TotalProcessed, path)
		for _, e := range result.Errors {
			log.Printf("import: %s", e)
		}
	}

	params, err := paramsRepo.GetOrDefault(ctx, "default")
	if err != nil {
		log.Fatalf("Failed to load scheduler params: %v", err)
	}
	engine := fsrs.New(params)
	svc := review.NewService(progressRepo, groupRepo, statsRepo, engine)

	// Group and enroll a chapter when one is configured.
	if chapterEnv := os.Getenv("ENROLL_CHAPTER"); chapterEnv != "" {
		if err := enrollChapter(ctx, chapterRepo, groupRepo, svc, chapterEnv); err != nil {
			log.Fatalf("Failed to enroll chapter %s: %v", chapterEnv, err)
		}
	}

	summary, err := svc.DueSummary(ctx, time.Now())
	if err != nil {
		log.Fatalf("Failed to get due summary: %v", err)
	}
	log.Printf("Due now: %d units (%d new, %d learning, %d review)",
		summary.Due, summary.New, summary.Learning, summary.Review)

	dailyLimit := 0
	if limitEnv := os.Getenv("DAILY_REVIEW_LIMIT"); limitEnv != "" {
		dailyLimit, err = strconv.Atoi(limitEnv)
		if err != nil {
			log.Fatalf("Invalid DAILY_REVIEW_LIMIT %q: %v", limitEnv, err)
		}
	}
	if dailyLimit > 0 {
		queue, err := svc.DueQueue(ctx, time.Now(), dailyLimit)
		if err != nil {
			log.Fatalf("Failed to build review queue: %v", err)
		}
		log.Printf("Today's queue: %d units (limit %d records)", len(queue), dailyLimit)
	}

	sched := scheduler.New(logNotifier{}, svc)
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start reminder scheduler: %v", err)
	}
	defer sched.Stop()

	log.Println("versebot running. Press Ctrl+C to stop.")
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received signal: %v, shutting down", sig)
}
