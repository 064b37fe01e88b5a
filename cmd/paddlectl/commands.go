package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"paddle/internal/config"
	"paddle/internal/paddle"
	"paddle/internal/types"
	"paddle/internal/webhook"
)

var (
	errUsage = errors.New("usage error")
	// errHelp means -h was given and the flag package printed the defaults.
	errHelp = errors.New("help requested")
)

// commandEnv is what a command may touch.
type commandEnv struct {
	client *paddle.Client
	cfg    *config.Config
	stdin  io.Reader
	out    io.Writer
	errOut io.Writer
}

type command struct {
	summary     string
	needsVendor bool
	run         func(ctx context.Context, env *commandEnv, args []string) error
}

var commands = map[string]command{
	"products":     {"list catalog products", true, runProducts},
	"plans":        {"list subscription plans", true, runPlans},
	"users":        {"list subscription users", true, runUsers},
	"coupons":      {"list coupons for a product", true, runCoupons},
	"transactions": {"list transactions for an entity", true, runTransactions},
	"payments":     {"list subscription payments", true, runPayments},
	"webhooks":     {"show webhook delivery history", true, runWebhooks},
	"summary":      {"count products, plans and users", true, runSummary},
	"verify":       {"check the signature of a saved webhook payload", false, runVerify},
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func newFlagSet(name string, env *commandEnv) *flag.FlagSet {
	fs := flag.NewFlagSet("paddlectl "+name, flag.ContinueOnError)
	fs.SetOutput(env.errOut)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// optionalInt64 returns nil for the flag's zero value so it is omitted from
// the request.
func optionalInt64(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}

func optionalInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func runProducts(ctx context.Context, env *commandEnv, args []string) error {
	if err := parseFlags(newFlagSet("products", env), args); err != nil {
		return err
	}
	resp, err := env.client.ListProducts(ctx)
	if err != nil {
		return err
	}
	return writeJSON(env.out, resp)
}

func runPlans(ctx context.Context, env *commandEnv, args []string) error {
	fs := newFlagSet("plans", env)
	plan := fs.Int64("plan", 0, "only this plan id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	plans, err := env.client.ListPlans(ctx, paddle.ListPlansParams{Plan: optionalInt64(*plan)})
	if err != nil {
		return err
	}
	return writeJSON(env.out, plans)
}

func runUsers(ctx context.Context, env *commandEnv, args []string) error {
	fs := newFlagSet("users", env)
	subscription := fs.Int64("subscription", 0, "only this subscription id")
	plan := fs.Int64("plan", 0, "only users of this plan id")
	state := fs.String("state", "", "active, past_due, trialing, paused or deleted")
	page := fs.Int("page", 0, "page number")
	perPage := fs.Int("per-page", 0, "results per page (max 200)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	params := paddle.ListUsersParams{
		SubscriptionID: optionalInt64(*subscription),
		PlanID:         optionalInt64(*plan),
		Page:           optionalInt(*page),
		ResultsPerPage: optionalInt(*perPage),
	}
	if *state != "" {
		params.State = paddle.Ptr(types.SubscriptionState(*state))
	}

	users, err := env.client.ListUsers(ctx, params)
	if err != nil {
		return err
	}
	return writeJSON(env.out, users)
}

func runCoupons(ctx context.Context, env *commandEnv, args []string) error {
	fs := newFlagSet("coupons", env)
	product := fs.Int64("product", 0, "product id (required)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *product <= 0 {
		return errors.New("coupons: -product is required")
	}

	coupons, err := env.client.ListCoupons(ctx, paddle.ListCouponsParams{ProductID: *product})
	if err != nil {
		return err
	}
	return writeJSON(env.out, coupons)
}

func runTransactions(ctx context.Context, env *commandEnv, args []string) error {
	fs := newFlagSet("transactions", env)
	entity := fs.String("entity", string(paddle.EntitySubscription), "user, subscription, order, checkout or product")
	id := fs.String("id", "", "entity id (required)")
	page := fs.Int("page", 0, "page number")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("transactions: -id is required")
	}

	txns, err := env.client.ListTransactions(ctx, paddle.ListTransactionsParams{
		Entity:   paddle.TransactionEntity(*entity),
		EntityID: *id,
		Page:     optionalInt(*page),
	})
	if err != nil {
		return err
	}
	return writeJSON(env.out, txns)
}

func runPayments(ctx context.Context, env *commandEnv, args []string) error {
	fs := newFlagSet("payments", env)
	subscription := fs.Int64("subscription", 0, "only this subscription id")
	plan := fs.Int64("plan", 0, "only this plan id")
	from := fs.String("from", "", "start date, YYYY-MM-DD")
	to := fs.String("to", "", "end date, YYYY-MM-DD")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	payments, err := env.client.ListPayments(ctx, paddle.ListPaymentsParams{
		SubscriptionID: optionalInt64(*subscription),
		Plan:           optionalInt64(*plan),
		From:           optionalString(*from),
		To:             optionalString(*to),
	})
	if err != nil {
		return err
	}
	return writeJSON(env.out, payments)
}

func runWebhooks(ctx context.Context, env *commandEnv, args []string) error {
	fs := newFlagSet("webhooks", env)
	page := fs.Int("page", 0, "page number")
	perPage := fs.String("per-page", "", "alerts per page")
	from := fs.String("from", "", "start, YYYY-MM-DD HH:MM:SS UTC")
	to := fs.String("to", "", "end, YYYY-MM-DD HH:MM:SS UTC")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	history, err := env.client.GetWebhookHistory(ctx, paddle.GetWebhookHistoryParams{
		Page:          optionalInt(*page),
		AlertsPerPage: optionalString(*perPage),
		QueryTail:     optionalString(*from),
		QueryHead:     optionalString(*to),
	})
	if err != nil {
		return err
	}
	return writeJSON(env.out, history)
}

type accountSummary struct {
	Products     int                             `json:"products"`
	Plans        int                             `json:"plans"`
	Users        int                             `json:"users"`
	UsersByState map[types.SubscriptionState]int `json:"users_by_state"`
}

// runSummary fetches products, plans and the first page of users
// concurrently. The first failure cancels the others.
func runSummary(ctx context.Context, env *commandEnv, args []string) error {
	if err := parseFlags(newFlagSet("summary", env), args); err != nil {
		return err
	}

	var (
		products paddle.ListProductsResponse
		plans    []paddle.Plan
		users    []paddle.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = env.client.ListProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		plans, err = env.client.ListPlans(gctx, paddle.ListPlansParams{})
		return err
	})
	g.Go(func() error {
		var err error
		users, err = env.client.ListUsers(gctx, paddle.ListUsersParams{})
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s := accountSummary{
		Products:     products.Total,
		Plans:        len(plans),
		Users:        len(users),
		UsersByState: make(map[types.SubscriptionState]int),
	}
	for _, u := range users {
		s.UsersByState[u.State]++
	}
	return writeJSON(env.out, s)
}

type verifyResult struct {
	Valid     bool   `json:"valid"`
	Reason    string `json:"reason,omitempty"`
	AlertName string `json:"alert_name,omitempty"`
	AlertID   string `json:"alert_id,omitempty"`
}

// runVerify checks a payload saved from a delivery, either the raw form body
// or a flat JSON object. "-" reads stdin.
func runVerify(ctx context.Context, env *commandEnv, args []string) error {
	fs := newFlagSet("verify", env)
	file := fs.String("file", "", "payload file, or - for stdin (required)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("verify: -file is required")
	}

	var (
		raw []byte
		err error
	)
	if *file == "-" {
		raw, err = io.ReadAll(env.stdin)
	} else {
		raw, err = os.ReadFile(*file)
	}
	if err != nil {
		return fmt.Errorf("reading payload: %w", err)
	}

	payload, err := decodeSavedPayload(raw)
	if err != nil {
		return err
	}

	res, err := env.client.VerifyWebhookDetailed(payload)
	if err != nil {
		return err
	}

	name, _ := payload.AlertName()
	out := verifyResult{
		Valid:     res.Valid,
		Reason:    string(res.Reason),
		AlertName: string(name),
		AlertID:   payload.AlertID(),
	}
	if err := writeJSON(env.out, out); err != nil {
		return err
	}
	if !res.Valid {
		return fmt.Errorf("signature is not valid: %s", res.Reason)
	}
	return nil
}

func decodeSavedPayload(raw []byte) (webhook.Payload, error) {
	trimmed := bytes.TrimSpace(raw)
	if bytes.HasPrefix(trimmed, []byte("{")) {
		return webhook.PayloadFromJSON(trimmed)
	}
	values, err := url.ParseQuery(strings.TrimSpace(string(trimmed)))
	if err != nil {
		return nil, fmt.Errorf("payload is neither JSON nor form encoded: %w", err)
	}
	return webhook.PayloadFromForm(values), nil
}
