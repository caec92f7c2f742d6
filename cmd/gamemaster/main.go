// Package main provides the game master binary: an interactive terminal
// campaign narrated by an Anthropic model wired to the game-mechanics tools.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/emberfall/gamemaster/internal/agent"
	"github.com/emberfall/gamemaster/internal/config"
	"github.com/emberfall/gamemaster/internal/game/character"
	"github.com/emberfall/gamemaster/internal/game/combat"
	"github.com/emberfall/gamemaster/internal/game/condition"
	"github.com/emberfall/gamemaster/internal/game/content"
	"github.com/emberfall/gamemaster/internal/game/dice"
	"github.com/emberfall/gamemaster/internal/game/enemy"
	"github.com/emberfall/gamemaster/internal/game/scenario"
	"github.com/emberfall/gamemaster/internal/game/session"
	"github.com/emberfall/gamemaster/internal/game/state"
	"github.com/emberfall/gamemaster/internal/observability"
	"github.com/emberfall/gamemaster/internal/storage"
	"github.com/emberfall/gamemaster/internal/storage/filestore"
	"github.com/emberfall/gamemaster/internal/storage/postgres"
	"github.com/emberfall/gamemaster/internal/tool"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	scenarioID := flag.String("scenario", "", "scenario to open with; empty = choose interactively")
	resumeFrom := flag.String("load", "", "save name or slot number to resume; empty = new campaign")
	seed := flag.Int64("seed", 0, "deterministic dice seed; 0 = cryptographic rolls")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		logger.Fatal("ANTHROPIC_API_KEY is not set; the game master cannot reach the model")
	}
	client := anthropic.NewClient()

	var src dice.Source
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
		logger.Warn("dice are seeded; every roll is deterministic", zap.Int64("seed", *seed))
	} else {
		src = dice.NewCryptoSource()
	}
	roller := dice.NewLoggedRoller(src, logger)

	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Load the content library. A missing directory falls back to the
	// built-in catalogs; a present but broken file is fatal.
	contentStart := time.Now()
	condRegistry := loadConditions(cfg.Content.Dir, logger)
	enemyRegistry := loadEnemies(cfg.Content.Dir, logger)
	classRegistry := loadClasses(cfg.Content.Dir, logger)
	gen := content.NewGenerator(src)
	loadTemplates(gen, cfg.Content.Dir, logger)
	logger.Info("content library ready",
		zap.Int("conditions", len(condRegistry.All())),
		zap.Int("enemy_types", len(enemyRegistry.All())),
		zap.Int("classes", len(classRegistry.All())),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	// Open the save backend.
	var store storage.Store
	switch cfg.Saves.Backend {
	case "postgres":
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		store = postgres.NewSaveRepository(pool.DB())
	default:
		fileStore, err := filestore.New(cfg.Saves.Dir, logger)
		if err != nil {
			logger.Fatal("opening save directory", zap.String("dir", cfg.Saves.Dir), zap.Error(err))
		}
		store = fileStore
	}

	engine := combat.NewEngine(roller, condRegistry, logger)
	camp := session.NewCampaign(state.NewManager(), engine)
	enemyFactory := enemy.NewFactory(enemyRegistry, src)

	registry, err := tool.NewRegistry(logger,
		tool.NewRollDice(roller),
		tool.NewPerformAttack(camp),
		tool.NewSkillCheck(camp, src),
		tool.NewUpdateCharacterStat(camp),
		tool.NewSaveGame(camp, store),
		tool.NewLoadGame(camp, store),
		tool.NewGenerateNPC(camp, gen),
		tool.NewCreateQuest(camp, gen),
		tool.NewCompleteQuest(camp),
		tool.NewModifyReputation(camp),
		tool.NewStartCombat(camp, enemyFactory),
		tool.NewNextTurn(camp),
		tool.NewEnemyTurn(camp),
		tool.NewCheckCombatStatus(camp),
		tool.NewEndCombat(camp),
	)
	if err != nil {
		logger.Fatal("building tool registry", zap.Error(err))
	}

	gm := agent.New(&client.Messages, registry, camp, agent.Options{
		Model:         cfg.Agent.Model,
		MaxTokens:     cfg.Agent.MaxTokens,
		Temperature:   cfg.Agent.Temperature,
		HistoryWindow: cfg.Agent.HistoryWindow,
		MaxToolRounds: cfg.Agent.MaxToolRounds,
	}, logger)

	logger.Info("game master ready",
		zap.String("model", cfg.Agent.Model),
		zap.String("saves_backend", cfg.Saves.Backend),
		zap.Duration("elapsed", time.Since(start)),
	)

	in := newConsole(ctx)
	printBanner()

	if *resumeFrom != "" {
		gs := loadSave(ctx, store, *resumeFrom, logger)
		camp.Restore(gs)
		gm.ResetHistory()
		fmt.Printf("Welcome back, %s. You were last at %s.\n\n",
			storage.CharacterName(gs), gs.CurrentLocation)
	} else {
		sheet, ok := createCharacter(in, classRegistry)
		if !ok {
			return
		}
		opening, ok := chooseScenario(in, *scenarioID)
		if !ok {
			return
		}
		gm.StartSession(sheet, opening.InitialPrompt)
		if err := camp.States().SetLocation(opening.StartingLocation); err != nil {
			logger.Warn("setting starting location", zap.Error(err))
		}
		fmt.Printf("\n=== %s ===\n%s\n\n", opening.Name, opening.Description)
		fmt.Println("The stage is set. Describe your first action.")
	}

	fmt.Println("Commands: /sheet /saves /save [name|slot] /load <name|slot> /scenarios /quit")
	fmt.Println()

	for {
		line, ok := in.ReadLine("> ")
		if !ok {
			fmt.Println()
			exitSave(camp, store, logger)
			fmt.Println("Farewell, adventurer.")
			return
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := runCommand(ctx, line, gm, camp, store); quit {
				exitSave(camp, store, logger)
				fmt.Println("Farewell, adventurer.")
				return
			}
			continue
		}

		reply, err := gm.Send(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Println()
				exitSave(camp, store, logger)
				fmt.Println("Farewell, adventurer.")
				return
			}
			fmt.Printf("The game master falters: %v\n", err)
			continue
		}
		for _, call := range reply.ToolCalls {
			fmt.Printf("  [%s] %s\n", call.Tool, call.Result.Body)
		}
		fmt.Println()
		fmt.Println(reply.Text)
		fmt.Println()
	}
}

// runCommand handles one slash command. Returns true when the player quit.
func runCommand(ctx context.Context, line string, gm *agent.GameMaster, camp *session.Campaign, store storage.Store) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "/quit", "/exit":
		return true
	case "/sheet":
		gs := camp.States().Current()
		if gs == nil || gs.Character == nil {
			fmt.Println("No character yet.")
			break
		}
		fmt.Println(gs.Character.Summary())
	case "/saves":
		summaries, err := store.List(ctx)
		if err != nil {
			fmt.Printf("Listing saves: %v\n", err)
			break
		}
		if len(summaries) == 0 {
			fmt.Println("No saves yet.")
			break
		}
		for _, s := range summaries {
			slot := ""
			if s.Slot != nil {
				slot = fmt.Sprintf(" [slot %d]", *s.Slot)
			}
			fmt.Printf("  %-40s %s (level %d) at %s, %dm played%s\n",
				s.Name, s.Character, s.Level, s.Location, s.PlaytimeMinutes, slot)
		}
	case "/save":
		gs, err := camp.Checkpoint()
		if err != nil {
			fmt.Printf("Nothing to save: %v\n", err)
			break
		}
		var info storage.SaveInfo
		if slot, convErr := strconv.Atoi(arg); convErr == nil {
			info, err = store.SaveToSlot(ctx, gs, slot)
		} else {
			info, err = store.Save(ctx, gs, arg)
		}
		if err != nil {
			fmt.Printf("Saving: %v\n", err)
			break
		}
		fmt.Printf("Saved as %q.\n", info.Name)
	case "/load":
		if arg == "" {
			fmt.Println("Usage: /load <name|slot>")
			break
		}
		var (
			gs  *state.GameState
			err error
		)
		if slot, convErr := strconv.Atoi(arg); convErr == nil {
			gs, err = store.LoadSlot(ctx, slot)
		} else {
			gs, err = store.Load(ctx, arg)
		}
		if err != nil {
			fmt.Printf("Loading: %v\n", err)
			break
		}
		camp.Restore(gs)
		gm.ResetHistory()
		fmt.Printf("Loaded %q. %s stands at %s.\n", arg, storage.CharacterName(gs), gs.CurrentLocation)
	case "/scenarios":
		for _, opening := range scenario.List() {
			fmt.Printf("  %-20s %-6s %s\n", opening.ID, opening.Difficulty, opening.Description)
		}
	default:
		fmt.Println("Commands: /sheet /saves /save [name|slot] /load <name|slot> /scenarios /quit")
	}
	return false
}

// createCharacter walks the player through naming and class selection.
func createCharacter(in *console, classes *character.Registry) (*character.Sheet, bool) {
	fmt.Println("--- Character Creation ---")
	var name string
	for name == "" {
		line, ok := in.ReadLine("Character name: ")
		if !ok {
			return nil, false
		}
		name = line
	}

	race, ok := in.ReadLine("Race [human]: ")
	if !ok {
		return nil, false
	}
	if race == "" {
		race = "human"
	}

	fmt.Println("Classes:")
	for _, c := range classes.All() {
		fmt.Printf("  %-8s d%-2d %s\n", c.ID, c.HitDie, c.Description)
	}
	for {
		className, ok := in.ReadLine("Class [fighter]: ")
		if !ok {
			return nil, false
		}
		if className == "" {
			className = "fighter"
		}
		sheet, err := classes.NewCharacter(name, race, className, nil)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Println()
		fmt.Println(sheet.Summary())
		return sheet, true
	}
}

// chooseScenario resolves the flag value, or asks when none was given.
// Unknown IDs fall back to the default opening.
func chooseScenario(in *console, id string) (scenario.Scenario, bool) {
	if id != "" {
		return scenario.Get(id), true
	}
	fmt.Println("Scenarios:")
	for _, opening := range scenario.List() {
		fmt.Printf("  %-20s %-6s %s\n", opening.ID, opening.Difficulty, opening.Description)
	}
	choice, ok := in.ReadLine(fmt.Sprintf("Scenario [%s]: ", scenario.DefaultID))
	if !ok {
		return scenario.Scenario{}, false
	}
	return scenario.Get(choice), true
}

// loadSave resolves ref as a slot number or a save name.
func loadSave(ctx context.Context, store storage.Store, ref string, logger *zap.Logger) *state.GameState {
	var (
		gs  *state.GameState
		err error
	)
	if slot, convErr := strconv.Atoi(ref); convErr == nil {
		gs, err = store.LoadSlot(ctx, slot)
	} else {
		gs, err = store.Load(ctx, ref)
	}
	if err != nil {
		logger.Fatal("loading save", zap.String("ref", ref), zap.Error(err))
	}
	return gs
}

// exitSave checkpoints into the automatic save before exit. No campaign, no
// save. The write runs on a fresh context because the signal context is
// usually already canceled on this path.
func exitSave(camp *session.Campaign, store storage.Store, logger *zap.Logger) {
	gs, err := camp.Checkpoint()
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	info, err := store.Save(ctx, gs, "autosave")
	if err != nil {
		logger.Warn("autosave failed", zap.Error(err))
		return
	}
	fmt.Printf("Progress saved as %q.\n", info.Name)
}

// loadConditions reads <root>/conditions on top of the built-in catalog.
// An empty root or a missing directory means the built-ins serve alone.
func loadConditions(root string, logger *zap.Logger) *condition.Registry {
	if root == "" {
		return condition.DefaultRegistry()
	}
	dir := filepath.Join(root, "conditions")
	reg, err := condition.LoadDirectory(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return condition.DefaultRegistry()
	}
	if err != nil {
		logger.Fatal("loading condition definitions", zap.String("dir", dir), zap.Error(err))
	}
	return reg
}

// loadEnemies reads <root>/enemies on top of the built-in bestiary.
func loadEnemies(root string, logger *zap.Logger) *enemy.Registry {
	if root == "" {
		return enemy.DefaultRegistry()
	}
	dir := filepath.Join(root, "enemies")
	reg, err := enemy.LoadDirectory(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return enemy.DefaultRegistry()
	}
	if err != nil {
		logger.Fatal("loading enemy templates", zap.String("dir", dir), zap.Error(err))
	}
	return reg
}

// loadClasses reads <root>/classes on top of the built-in classes.
func loadClasses(root string, logger *zap.Logger) *character.Registry {
	reg := character.DefaultRegistry()
	if root == "" {
		return reg
	}
	dir := filepath.Join(root, "classes")
	if err := reg.LoadDirectory(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Fatal("loading class definitions", zap.String("dir", dir), zap.Error(err))
	}
	return reg
}

// loadTemplates reads <root>/npcs and <root>/quests into the generator.
func loadTemplates(gen *content.Generator, root string, logger *zap.Logger) {
	if root == "" {
		return
	}
	npcDir := filepath.Join(root, "npcs")
	if err := gen.LoadNPCTemplates(npcDir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Fatal("loading npc templates", zap.String("dir", npcDir), zap.Error(err))
	}
	questDir := filepath.Join(root, "quests")
	if err := gen.LoadQuestTemplates(questDir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Fatal("loading quest templates", zap.String("dir", questDir), zap.Error(err))
	}
}

// console serializes reads from stdin so prompts can be interrupted by
// signal-driven shutdown.
type console struct {
	ctx   context.Context
	lines <-chan string
}

func newConsole(ctx context.Context) *console {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		sc.Buffer(make([]byte, 0, 64*1024), 64*1024)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return &console{ctx: ctx, lines: lines}
}

// ReadLine prints prompt and returns the next trimmed input line. The second
// return is false when stdin closed or shutdown began.
func (c *console) ReadLine(prompt string) (string, bool) {
	fmt.Print(prompt)
	select {
	case <-c.ctx.Done():
		return "", false
	case line, ok := <-c.lines:
		if !ok {
			return "", false
		}
		return strings.TrimSpace(line), true
	}
}

func printBanner() {
	line := strings.Repeat("=", 60)
	fmt.Println(line)
	fmt.Println("  EMBERFALL GAME MASTER")
	fmt.Println(line)
	fmt.Println()
}
