package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/example/tapspeak/internal/catalog"
	"github.com/example/tapspeak/internal/database"
	"github.com/example/tapspeak/internal/progress"
	"github.com/example/tapspeak/internal/scheduler"
	"github.com/example/tapspeak/pkg/models"
)

func main() {
	// Load .env if present; absence is fine
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ledger, err := progress.NewLedger(database.NewSnapshotRepository(db), progress.ConfigFromEnv())
	if err != nil {
		log.Fatalf("Failed to create ledger: %v", err)
	}
	words := database.NewWordRepository(db)

	switch os.Args[1] {
	case "import":
		cmdImport(os.Args[2:], words)
	case "users":
		cmdUsers(ledger)
	case "user":
		cmdUser(os.Args[2:], ledger)
	case "enroll":
		cmdEnroll(os.Args[2:], ledger)
	case "forget":
		cmdForget(os.Args[2:], ledger)
	case "seen":
		cmdSeen(os.Args[2:], ledger)
	case "review":
		cmdReview(os.Args[2:], ledger)
	case "due":
		cmdDue(os.Args[2:], ledger, words)
	case "progress":
		cmdProgress(os.Args[2:], ledger)
	case "points":
		cmdPoints(os.Args[2:], ledger)
	case "reset":
		cmdReset(os.Args[2:], ledger)
	case "remind":
		cmdRemind(ledger)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: tapspeak <command> [flags]

Commands:
  import    import word catalog from an xlsx or csv file
  users     list known users
  user      show or switch the active user
  enroll    enroll a word into spaced review
  forget    remove a word from review (keeps its history)
  seen      bump a word's seen counter
  review    record a review outcome
  due       list words due today
  progress  show a word's progress record
  points    show a user's points balance
  reset     reset a user's progress (PIN required)
  remind    run the hourly due-review reminder loop`)
}

func cmdImport(args []string, words *database.WordRepository) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "path to the xlsx or csv file")
	sheet := fs.String("sheet", "Sheet1", "sheet name (xlsx only)")
	startRow := fs.Int("start", 2, "first data row (1-based)")
	fs.Parse(args)

	if *file == "" {
		log.Fatal("import requires -file")
	}

	cfg := catalog.DefaultImportConfig()
	cfg.FilePath = *file
	cfg.SheetName = *sheet
	cfg.StartRow = *startRow

	result, err := catalog.ImportWords(cfg, words)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	fmt.Printf("Processed %d rows: %d created, %d updated, %d skipped\n",
		result.TotalProcessed, result.Created, result.Updated, result.Skipped)
	for _, e := range result.Errors {
		fmt.Fprintln(os.Stderr, e)
	}
}

func cmdUsers(ledger *progress.Ledger) {
	users, err := ledger.Users()
	if err != nil {
		log.Fatalf("Failed to list users: %v", err)
	}
	active, err := ledger.ActiveUser()
	if err != nil {
		log.Fatalf("Failed to get active user: %v", err)
	}
	for _, uid := range users {
		marker := " "
		if uid == active {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, uid)
	}
}

func cmdUser(args []string, ledger *progress.Ledger) {
	fs := flag.NewFlagSet("user", flag.ExitOnError)
	set := fs.String("set", "", "user id to make active")
	fs.Parse(args)

	if *set == "" {
		active, err := ledger.ActiveUser()
		if err != nil {
			log.Fatalf("Failed to get active user: %v", err)
		}
		fmt.Println(active)
		return
	}
	uid, err := ledger.SetActiveUser(*set)
	if err != nil {
		log.Fatalf("Failed to set active user: %v", err)
	}
	fmt.Printf("Active user: %s\n", uid)
}

func userWordFlags(fs *flag.FlagSet) (*string, *string) {
	user := fs.String("user", "", "user id (defaults to the active user)")
	word := fs.String("word", "", "word id")
	return user, word
}

func cmdEnroll(args []string, ledger *progress.Ledger) {
	fs := flag.NewFlagSet("enroll", flag.ExitOnError)
	user, word := userWordFlags(fs)
	fs.Parse(args)
	requireWord(*word)

	p, err := ledger.Enroll(*user, *word, models.Today())
	if err != nil {
		log.Fatalf("Failed to enroll word: %v", err)
	}
	fmt.Printf("Enrolled %q, due %s\n", *word, p.Due)
}

func cmdForget(args []string, ledger *progress.Ledger) {
	fs := flag.NewFlagSet("forget", flag.ExitOnError)
	user, word := userWordFlags(fs)
	fs.Parse(args)
	requireWord(*word)

	if _, err := ledger.Unenroll(*user, *word); err != nil {
		log.Fatalf("Failed to unenroll word: %v", err)
	}
	fmt.Printf("Removed %q from review\n", *word)
}

func cmdSeen(args []string, ledger *progress.Ledger) {
	fs := flag.NewFlagSet("seen", flag.ExitOnError)
	user, word := userWordFlags(fs)
	fs.Parse(args)
	requireWord(*word)

	n, err := ledger.TouchSeen(*user, *word)
	if err != nil {
		log.Fatalf("Failed to record seen: %v", err)
	}
	fmt.Printf("Seen %q %d times\n", *word, n)
}

func cmdReview(args []string, ledger *progress.Ledger) {
	fs := flag.NewFlagSet("review", flag.ExitOnError)
	user, word := userWordFlags(fs)
	correct := fs.Bool("correct", false, "whether the answer was correct")
	fs.Parse(args)
	requireWord(*word)

	res, err := ledger.ApplyReviewResult(*user, *word, *correct, models.Today())
	if err != nil {
		log.Fatalf("Failed to record review: %v", err)
	}
	fmt.Printf("Next due %s", res.Due)
	if res.PointsGained > 0 {
		fmt.Printf(" (+%d point)", res.PointsGained)
	}
	fmt.Println()
}

func cmdDue(args []string, ledger *progress.Ledger, words *database.WordRepository) {
	fs := flag.NewFlagSet("due", flag.ExitOnError)
	user := fs.String("user", "", "user id (defaults to the active user)")
	fromCatalog := fs.Bool("catalog", false, "intersect against the imported word catalog")
	fs.Parse(args)

	var candidates []string
	if *fromCatalog {
		ids, err := words.IDs()
		if err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
		candidates = ids
	}

	due, err := ledger.DueWordIDs(*user, candidates, models.Today())
	if err != nil {
		log.Fatalf("Failed to query due words: %v", err)
	}
	for _, wid := range due {
		fmt.Println(wid)
	}
	fmt.Fprintf(os.Stderr, "%d due\n", len(due))
}

func cmdProgress(args []string, ledger *progress.Ledger) {
	fs := flag.NewFlagSet("progress", flag.ExitOnError)
	user, word := userWordFlags(fs)
	fs.Parse(args)
	requireWord(*word)

	p, err := ledger.GetProgress(*user, *word)
	if err != nil {
		log.Fatalf("Failed to get progress: %v", err)
	}
	fmt.Printf("enrolled=%v due=%s seen=%d remembered=%d\n",
		p.Enrolled, p.Due, p.SeenCount, p.RememberedCount)
}

func cmdPoints(args []string, ledger *progress.Ledger) {
	fs := flag.NewFlagSet("points", flag.ExitOnError)
	user := fs.String("user", "", "user id (defaults to the active user)")
	fs.Parse(args)

	pts, err := ledger.Points(*user)
	if err != nil {
		log.Fatalf("Failed to get points: %v", err)
	}
	fmt.Println(pts)
}

func cmdReset(args []string, ledger *progress.Ledger) {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	user := fs.String("user", "", "user id (defaults to the active user)")
	pin := fs.String("pin", "", "reset PIN")
	fs.Parse(args)

	ok, err := ledger.ResetUser(*user, *pin)
	if err != nil {
		log.Fatalf("Failed to reset user: %v", err)
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "Wrong PIN, nothing changed")
		os.Exit(1)
	}
	fmt.Println("Progress reset")
}

func cmdRemind(ledger *progress.Ledger) {
	s := scheduler.New(ledger, logNotifier{})
	s.Start()
	defer s.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("Reminder loop started. Press Ctrl+C to stop.")
	sig := <-sigChan
	log.Printf("Received signal: %v, shutting down", sig)
}

// logNotifier delivers reminders to the process log. A real deployment
// plugs a push channel in here.
type logNotifier struct{}

func (logNotifier) SendReminder(userID string, dueCount int) error {
	log.Printf("User %s has %d words due for review", userID, dueCount)
	return nil
}

func requireWord(word string) {
	if word == "" {
		log.Fatal("missing required -word flag")
	}
}
