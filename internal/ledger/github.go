package ledger

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/google/go-github/v66/github"

	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/remote"
)

type Settings struct {
	Token string `json:"-"`
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

func (s Settings) Configured() bool {
	return s.Token != "" && s.Owner != "" && s.Repo != ""
}

// GitHub keeps the order ledger in a repository's issues. Credentials can
// be swapped at runtime by the admin console.
type GitHub struct {
	baseURL string

	mu       sync.RWMutex
	settings Settings
	client   *github.Client
}

// NewGitHub builds the adapter. baseURL overrides the public API endpoint
// and may be empty.
func NewGitHub(settings Settings, baseURL string) (*GitHub, error) {
	g := &GitHub{baseURL: baseURL}
	if err := g.Configure(settings); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *GitHub) Configure(settings Settings) error {
	client := github.NewClient(nil).WithAuthToken(settings.Token)
	if g.baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(g.baseURL, "/") + "/")
		if err != nil {
			return fmt.Errorf("parse ledger base url: %w", err)
		}
		client.BaseURL = u
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.settings = settings
	g.client = client
	return nil
}

func (g *GitHub) Settings() Settings {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.settings
}

func (g *GitHub) Configured() bool {
	return g.Settings().Configured()
}

func (g *GitHub) CreateOrder(ctx context.Context, order models.Order) (int, error) {
	client, s, err := g.session()
	if err != nil {
		return 0, err
	}

	labels := Labels(order)
	issue, _, err := client.Issues.Create(ctx, s.Owner, s.Repo, &github.IssueRequest{
		Title:  github.String(Title(order)),
		Body:   github.String(Body(order)),
		Labels: &labels,
	})
	if err != nil {
		return 0, classify("create issue", err)
	}

	return issue.GetNumber(), nil
}

func (g *GitHub) SetStatus(ctx context.Context, number int, status models.OrderStatus) error {
	client, s, err := g.session()
	if err != nil {
		return err
	}

	issue, _, err := client.Issues.Get(ctx, s.Owner, s.Repo, number)
	if err != nil {
		return classify("get issue", err)
	}

	labels := ReplaceStatus(labelNames(issue.Labels), status)
	_, _, err = client.Issues.Edit(ctx, s.Owner, s.Repo, number, &github.IssueRequest{
		Labels: &labels,
		State:  github.String(issueState(status)),
	})
	if err != nil {
		return classify("edit issue", err)
	}

	_, _, err = client.Issues.CreateComment(ctx, s.Owner, s.Repo, number, &github.IssueComment{
		Body: github.String(fmt.Sprintf("Status changed to **%s**", status)),
	})
	if err != nil {
		return classify("comment issue", err)
	}

	return nil
}

func (g *GitHub) FindIssue(ctx context.Context, orderNumber string) (int, error) {
	client, s, err := g.session()
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("repo:%s/%s is:issue label:%s in:title %s", s.Owner, s.Repo, LabelOrder, orderNumber)
	result, _, err := client.Search.Issues(ctx, query, nil)
	if err != nil {
		return 0, classify("search issues", err)
	}

	for _, issue := range result.Issues {
		if strings.HasPrefix(issue.GetTitle(), orderNumber) {
			return issue.GetNumber(), nil
		}
	}
	return 0, ErrIssueNotFound
}

func (g *GitHub) ListOrders(ctx context.Context) ([]RemoteOrder, error) {
	client, s, err := g.session()
	if err != nil {
		return nil, err
	}

	issues, _, err := client.Issues.ListByRepo(ctx, s.Owner, s.Repo, &github.IssueListByRepoOptions{
		State:       "all",
		Labels:      []string{LabelOrder},
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 50},
	})
	if err != nil {
		return nil, classify("list issues", err)
	}

	orders := make([]RemoteOrder, 0, len(issues))
	for _, issue := range issues {
		labels := labelNames(issue.Labels)
		orders = append(orders, RemoteOrder{
			Issue:  issue.GetNumber(),
			Title:  issue.GetTitle(),
			State:  issue.GetState(),
			Status: statusFromLabels(labels),
			Labels: labels,
			URL:    issue.GetHTMLURL(),
		})
	}
	return orders, nil
}

func (g *GitHub) session() (*github.Client, Settings, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.settings.Configured() {
		return nil, Settings{}, remote.ErrNotConfigured
	}
	return g.client, g.settings, nil
}

func labelNames(labels []*github.Label) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.GetName())
	}
	return names
}

func classify(op string, err error) error {
	var (
		rateErr  *github.RateLimitError
		abuseErr *github.AbuseRateLimitError
		respErr  *github.ErrorResponse
	)

	kind := remote.KindOf(err)
	switch {
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		kind = remote.KindTransient
	case errors.As(err, &respErr) && respErr.Response != nil:
		kind = remote.FromStatus(respErr.Response.StatusCode)
	}

	return &remote.Error{Kind: kind, Op: op, Err: err}
}

var _ Ledger = (*GitHub)(nil)
