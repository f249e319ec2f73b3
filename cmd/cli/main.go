package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"cuisinehub/internal/client"
	"cuisinehub/internal/generation"
	"cuisinehub/internal/shopping"
	"cuisinehub/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type tokenData struct {
	Token string `json:"token"`
}

func main() {
	global := flag.NewFlagSet("cuisinehub", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	apiKey := global.String("api-key", os.Getenv("CUISINEHUB_API_KEY"), "generation API key")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}

	api := client.New(*baseURL)
	api.SetAPIKey(*apiKey)
	if token, err := readToken(*tokenPath); err == nil && token != "" {
		api.SetToken(token)
	}

	switch cmd {
	case "auth":
		handleAuth(ctx, api, *tokenPath, sub, args[2:])
	case "recipes":
		handleRecipes(ctx, api, sub, args[2:])
	case "favorites":
		handleFavorites(ctx, api, sub, args[2:])
	case "shopping":
		handleShopping(ctx, api, sub, args[2:])
	case "generate":
		handleGenerate(ctx, api, sub, args[2:])
	case "feed":
		handleFeed(*baseURL, sub, args[2:])
	case "notify":
		handleNotify(sub, args[2:])
	case "onboarding":
		handleOnboarding(sub)
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(ctx context.Context, api *client.Client, tokenPath, sub string, args []string) {
	switch sub {
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *email == "" || *password == "" {
			log.Fatal("email and password are required")
		}

		sess, err := api.Login(ctx, *email, *password)
		if err != nil {
			log.Fatalf("login failed: %v", err)
		}
		if err := saveToken(tokenPath, sess.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Printf("✅ logged in as %s\n", sess.User.Username)
	case "register":
		fs := flag.NewFlagSet("auth register", flag.ExitOnError)
		username := fs.String("username", "", "username")
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *username == "" || *email == "" || *password == "" {
			log.Fatal("username, email, and password are required")
		}

		sess, err := api.Register(ctx, *username, *email, *password)
		if err != nil {
			log.Fatalf("register failed: %v", err)
		}
		if err := saveToken(tokenPath, sess.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("✅ registered and logged in")
	case "profile":
		p, err := api.Profile(ctx)
		if err != nil {
			log.Fatalf("profile failed: %v", err)
		}
		printJSON(p)
	case "logout":
		if err := api.Logout(ctx); err != nil {
			log.Printf("server logout failed: %v", err)
		}
		if err := clearToken(tokenPath); err != nil {
			log.Fatalf("logout failed: %v", err)
		}
		fmt.Println("✅ logged out")
	default:
		log.Fatal("usage: cuisinehub auth <login|register|profile|logout>")
	}
}

func handleRecipes(ctx context.Context, api *client.Client, sub string, args []string) {
	switch sub {
	case "search":
		fs := flag.NewFlagSet("recipes search", flag.ExitOnError)
		query := fs.String("q", "", "search query")
		country := fs.String("country", "", "country filter")
		categoryID := fs.Int64("category", 0, "category id filter")
		sort := fs.String("sort", "newest", "sort: newest or oldest")
		limit := fs.Int("limit", 20, "page size")
		offset := fs.Int("offset", 0, "offset")
		_ = fs.Parse(args)

		items, total, err := api.Recipes(ctx, client.RecipeFilter{
			Query:      *query,
			Country:    *country,
			CategoryID: *categoryID,
			Sort:       *sort,
			Limit:      *limit,
			Offset:     *offset,
		})
		if err != nil {
			log.Fatalf("search failed: %v", err)
		}
		printJSON(map[string]any{"total": total, "items": items})
	case "show":
		fs := flag.NewFlagSet("recipes show", flag.ExitOnError)
		id := fs.Int64("id", 0, "recipe id")
		_ = fs.Parse(args)
		if *id <= 0 {
			log.Fatal("recipe id is required")
		}

		details, err := api.RecipeDetails(ctx, *id)
		if err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(details)
	case "explore":
		items, err := api.Explore(ctx)
		if err != nil {
			log.Fatalf("explore failed: %v", err)
		}
		printJSON(items)
	case "categories":
		items, err := api.Categories(ctx)
		if err != nil {
			log.Fatalf("categories failed: %v", err)
		}
		printJSON(items)
	case "inspirations":
		items, err := api.Inspirations(ctx)
		if err != nil {
			log.Fatalf("inspirations failed: %v", err)
		}
		printJSON(items)
	default:
		log.Fatal("usage: cuisinehub recipes <search|show|explore|categories|inspirations>")
	}
}

func handleFavorites(ctx context.Context, api *client.Client, sub string, args []string) {
	switch sub {
	case "add", "remove":
		fs := flag.NewFlagSet("favorites "+sub, flag.ExitOnError)
		id := fs.Int64("id", 0, "recipe id")
		_ = fs.Parse(args)
		if *id <= 0 {
			log.Fatal("recipe id is required")
		}

		var err error
		if sub == "add" {
			err = api.AddFavorite(ctx, *id)
		} else {
			err = api.RemoveFavorite(ctx, *id)
		}
		if err != nil {
			log.Fatalf("%s failed: %v", sub, err)
		}
		fmt.Printf("✅ favorite %sd\n", sub)
	case "list":
		items, err := api.Favorites(ctx)
		if err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(items)
	default:
		log.Fatal("usage: cuisinehub favorites <add|remove|list>")
	}
}

func handleShopping(ctx context.Context, api *client.Client, sub string, args []string) {
	switch sub {
	case "build":
		fs := flag.NewFlagSet("shopping build", flag.ExitOnError)
		ids := fs.String("recipes", "", "comma-separated recipe ids")
		servings := fs.Int("servings", 4, "serving count")
		save := fs.String("save", "", "also save the list under this name")
		_ = fs.Parse(args)

		recipeIDs := parseIDs(*ids)
		if len(recipeIDs) == 0 {
			log.Fatal("at least one recipe id is required")
		}

		data, err := api.BuildShoppingList(ctx, recipeIDs, *servings, client.AggregateOptions{
			OnSlow: func() { log.Println("still aggregating, hang on...") },
		})
		if err != nil {
			log.Fatalf("build failed: %v", err)
		}
		printJSON(data)

		if *save != "" {
			id, err := api.SaveShoppingList(ctx, *save, recipeIDs, data)
			if err != nil {
				log.Fatalf("save failed: %v", err)
			}
			fmt.Printf("✅ saved as list %d\n", id)
		}
	case "list":
		lists, err := api.ShoppingLists(ctx)
		if err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(lists)
	case "show":
		fs := flag.NewFlagSet("shopping show", flag.ExitOnError)
		id := fs.Int64("id", 0, "list id")
		_ = fs.Parse(args)
		if *id <= 0 {
			log.Fatal("list id is required")
		}

		detail, err := api.ShoppingList(ctx, *id)
		if err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(detail)
	case "session":
		fs := flag.NewFlagSet("shopping session", flag.ExitOnError)
		id := fs.Int64("id", 0, "list id")
		_ = fs.Parse(args)
		if *id <= 0 {
			log.Fatal("list id is required")
		}

		if err := runShoppingSession(ctx, api, *id); err != nil {
			log.Fatalf("session failed: %v", err)
		}
	case "check":
		fs := flag.NewFlagSet("shopping check", flag.ExitOnError)
		itemID := fs.Int64("item", 0, "item id")
		checked := fs.Bool("checked", true, "checked state")
		_ = fs.Parse(args)
		if *itemID <= 0 {
			log.Fatal("item id is required")
		}

		if err := api.SetItemChecked(ctx, *itemID, *checked); err != nil {
			log.Fatalf("check failed: %v", err)
		}
		fmt.Println("✅ updated")
	case "delete":
		fs := flag.NewFlagSet("shopping delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "list id")
		_ = fs.Parse(args)
		if *id <= 0 {
			log.Fatal("list id is required")
		}

		if err := api.DeleteShoppingList(ctx, *id); err != nil {
			log.Fatalf("delete failed: %v", err)
		}
		fmt.Println("✅ deleted")
	default:
		log.Fatal("usage: cuisinehub shopping <build|list|show|session|check|delete>")
	}
}

// runShoppingSession walks a saved list interactively: each toggle goes
// through the local check state, which persists over the API and rolls
// the flag back when the server rejects the write.
func runShoppingSession(ctx context.Context, api *client.Client, listID int64) error {
	detail, err := api.ShoppingList(ctx, listID)
	if err != nil {
		return err
	}
	if detail.Data.TotalItems() == 0 {
		return fmt.Errorf("list %d has no items", listID)
	}

	state := shopping.NewState(detail.Data, api.Items())

	type itemRef struct {
		category string
		name     string
	}
	refs := make(map[int64]itemRef)
	for _, g := range detail.Data.Ingredients {
		for _, it := range g.Items {
			refs[it.ID] = itemRef{category: g.Category, name: it.Name}
		}
	}

	fmt.Printf("🛒 %s\n", detail.List.Name)
	renderShoppingState(state, detail.Data)
	fmt.Println("type an item id to toggle it, l to redraw, q to quit")

	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			return sc.Err()
		}

		input := strings.TrimSpace(sc.Text())
		switch input {
		case "":
			continue
		case "q", "quit":
			return nil
		case "l", "list":
			renderShoppingState(state, detail.Data)
			continue
		}

		itemID, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			fmt.Println("unknown command")
			continue
		}
		ref, ok := refs[itemID]
		if !ok {
			fmt.Printf("no item %d in this list\n", itemID)
			continue
		}

		if err := state.ToggleItem(ctx, ref.category, itemID, ref.name); err != nil {
			fmt.Printf("toggle failed, change reverted: %v\n", err)
			continue
		}
		renderShoppingState(state, detail.Data)
	}
}

// renderShoppingState prints the list per category, unchecked items
// first, with the completion ratio underneath.
func renderShoppingState(state *shopping.State, data models.ShoppingListData) {
	for _, g := range data.Ingredients {
		fmt.Printf("%s\n", g.Category)
		for _, it := range state.SortForDisplay(g.Category, g.Items) {
			mark := " "
			if state.IsChecked(g.Category, it.Name) {
				mark = "x"
			}
			qty := it.Quantity
			if it.Unit != "" {
				qty += " " + it.Unit
			}
			fmt.Printf("  [%s] %3d  %s (%s)\n", mark, it.ID, it.Name, qty)
		}
	}
	fmt.Printf("progress: %d/%d (%.0f%%)\n", state.CheckedCount(), state.TotalItems(), state.Progress()*100)
}

func handleGenerate(ctx context.Context, api *client.Client, sub string, args []string) {
	switch sub {
	case "ping":
		if err := api.Ping(ctx); err != nil {
			log.Fatalf("generation server unreachable: %v", err)
		}
		fmt.Println("✅ generation server is up")
	case "submit", "sync":
		fs := flag.NewFlagSet("generate "+sub, flag.ExitOnError)
		dishType := fs.String("dish-type", "plat principal", "dish type")
		name := fs.String("name", "", "recipe name to generate")
		ingredients := fs.String("ingredients", "", "comma-separated available ingredients")
		diets := fs.String("diets", "", "comma-separated dietary constraints")
		excluded := fs.String("excluded", "", "comma-separated excluded ingredients")
		_ = fs.Parse(args)

		req := generation.Request{
			DishType:             *dishType,
			RecipeName:           *name,
			AvailableIngredients: splitList(*ingredients),
			DietaryConstraints:   splitList(*diets),
			ExcludedIngredients:  splitList(*excluded),
		}
		if err := req.Validate(); err != nil {
			log.Fatalf("invalid request: %v", err)
		}

		if err := api.Ping(ctx); err != nil {
			log.Fatalf("generation server unreachable: %v", err)
		}

		if sub == "sync" {
			details, err := api.GenerateRecipeSync(ctx, req)
			if err != nil {
				log.Fatalf("generate failed: %v", err)
			}
			printJSON(details)
			return
		}

		jobID, err := api.GenerateRecipe(ctx, req)
		if err != nil {
			log.Fatalf("generate failed: %v", err)
		}
		fmt.Printf("✅ job %s accepted; watch the feed or notify listener for completion\n", jobID)
	default:
		log.Fatal("usage: cuisinehub generate <ping|submit|sync>")
	}
}

func handleFeed(baseURL, sub string, args []string) {
	switch sub {
	case "listen":
		fs := flag.NewFlagSet("feed listen", flag.ExitOnError)
		addr := fs.String("addr", "127.0.0.1:7070", "TCP feed address")
		pretty := fs.Bool("pretty", true, "pretty print JSON events")
		_ = fs.Parse(args)
		for {
			if err := runFeedTCP(*addr, *pretty); err != nil {
				log.Printf("[feed] disconnected: %v", err)
			}
			time.Sleep(1 * time.Second)
		}
	case "subscribe":
		fs := flag.NewFlagSet("feed subscribe", flag.ExitOnError)
		wsURL := fs.String("ws", "", "WebSocket URL (defaults to /ws on API host)")
		_ = fs.Parse(args)

		endpoint := *wsURL
		if endpoint == "" {
			var err error
			endpoint, err = websocketURL(baseURL, "/ws")
			if err != nil {
				log.Fatalf("ws url: %v", err)
			}
		}
		if err := runWebSocket(endpoint); err != nil {
			log.Fatalf("subscribe failed: %v", err)
		}
	default:
		log.Fatal("usage: cuisinehub feed <listen|subscribe>")
	}
}

func handleNotify(sub string, args []string) {
	switch sub {
	case "listen":
		fs := flag.NewFlagSet("notify listen", flag.ExitOnError)
		addr := fs.String("addr", "127.0.0.1:7071", "UDP notify server address")
		token := fs.String("device-token", "cli-device", "device token to register")
		_ = fs.Parse(args)
		if err := runNotifyUDP(*addr, *token); err != nil {
			log.Fatalf("notify listen failed: %v", err)
		}
	default:
		log.Fatal("usage: cuisinehub notify listen")
	}
}

func handleOnboarding(sub string) {
	store := client.DefaultOnboardingStore()
	switch sub {
	case "status":
		if store.Seen() {
			fmt.Println("onboarding: seen")
		} else {
			fmt.Println("onboarding: not seen")
		}
	case "seen":
		if err := store.MarkSeen(); err != nil {
			log.Fatalf("mark seen failed: %v", err)
		}
		fmt.Println("✅ marked as seen")
	case "reset":
		if err := store.Reset(); err != nil {
			log.Fatalf("reset failed: %v", err)
		}
		fmt.Println("✅ reset")
	default:
		log.Fatal("usage: cuisinehub onboarding <status|seen|reset>")
	}
}

func runFeedTCP(addr string, pretty bool) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Printf("[feed] connected to %s", addr)
	reader := bufio.NewScanner(conn)
	for reader.Scan() {
		line := reader.Bytes()
		if !pretty {
			fmt.Println(string(line))
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			fmt.Println(string(line))
			continue
		}
		b, _ := json.MarshalIndent(obj, "", "  ")
		fmt.Println(string(b))
	}
	if err := reader.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

func runWebSocket(wsURL string) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("[feed] connected to %s", wsURL)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Println(string(msg))
	}
}

func runNotifyUDP(addr, token string) error {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	reg, err := json.Marshal(map[string]string{"type": "register", "token": token})
	if err != nil {
		return err
	}
	if _, err := conn.Write(reg); err != nil {
		return err
	}
	log.Printf("[notify] registered %s at %s, waiting for pushes", token, addr)

	buf := make([]byte, 2048)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return err
		}
		fmt.Println(string(buf[:n]))
	}
}

func parseIDs(csv string) []int64 {
	var ids []int64
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Fatalf("invalid recipe id %q", part)
		}
		ids = append(ids, id)
	}
	return ids
}

func splitList(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.cuisinehub-token.json"
	}
	return filepath.Join(home, ".cuisinehub", "token.json")
}

func saveToken(path, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", err
	}
	return strings.TrimSpace(td.Token), nil
}

func clearToken(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

func printUsage() {
	fmt.Println("cuisinehub <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  auth login|register|profile|logout")
	fmt.Println("  recipes search|show|explore|categories|inspirations")
	fmt.Println("  favorites add|remove|list")
	fmt.Println("  shopping build|list|show|session|check|delete")
	fmt.Println("  generate ping|submit|sync")
	fmt.Println("  feed listen|subscribe")
	fmt.Println("  notify listen")
	fmt.Println("  onboarding status|seen|reset")
}
