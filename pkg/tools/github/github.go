// Package github provides read-only GitHub browsing tools: repository search,
// repository details, file content, directory listing and auth status.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aretw0/toolhouse/pkg/domain"
	"github.com/aretw0/toolhouse/pkg/registry"
	gh "github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// Tool names.
const (
	SearchToolName   = "github_search_repositories"
	RepoInfoToolName = "github_get_repository_info"
	FileToolName     = "github_get_file_content"
	ListToolName     = "github_list_files"
	AuthToolName     = "github_auth_status"
)

const (
	DefaultSearchLimit = 5
	MaxSearchLimit     = 10
	DefaultBranch      = "main"
	fallbackBranch     = "master"
)

// ErrNotFound is returned when a repository, path or branch does not exist
// or is not visible with the current credentials.
var ErrNotFound = errors.New("github resource not found")

type SearchArgs struct {
	Query string `json:"query" jsonschema_description:"Search query, e.g. 'python machine learning' or 'user:microsoft'"`
	Limit int    `json:"limit,omitempty" jsonschema:"minimum=1,maximum=10,default=5" jsonschema_description:"Maximum number of repositories to return"`
}

type RepoArgs struct {
	Owner string `json:"owner" jsonschema_description:"Repository owner (user or organization)"`
	Repo  string `json:"repo" jsonschema_description:"Repository name"`
}

type FileArgs struct {
	Owner    string `json:"owner" jsonschema_description:"Repository owner (user or organization)"`
	Repo     string `json:"repo" jsonschema_description:"Repository name"`
	FilePath string `json:"file_path" jsonschema_description:"Path to the file, e.g. README.md or src/main.go"`
	Branch   string `json:"branch,omitempty" jsonschema:"default=main" jsonschema_description:"Branch name; main falls back to master"`
}

type ListArgs struct {
	Owner  string `json:"owner" jsonschema_description:"Repository owner (user or organization)"`
	Repo   string `json:"repo" jsonschema_description:"Repository name"`
	Path   string `json:"path,omitempty" jsonschema_description:"Directory path; empty for the repository root"`
	Branch string `json:"branch,omitempty" jsonschema:"default=main" jsonschema_description:"Branch name; main falls back to master"`
}

type AuthArgs struct{}

// Tool wraps a go-github client.
type Tool struct {
	client        *gh.Client
	authenticated bool
}

type Option func(*config)

type config struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// WithToken authenticates requests with a personal access token.
func WithToken(token string) Option {
	return func(c *config) {
		c.token = token
	}
}

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = baseURL
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.httpClient = client
	}
}

// New creates the tool. Without a token it uses the unauthenticated public API.
func New(opts ...Option) (*Tool, error) {
	cfg := &config{httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(cfg)
	}

	httpClient := cfg.httpClient
	if cfg.token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, cfg.httpClient)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.token}))
	}

	client := gh.NewClient(httpClient)
	if cfg.baseURL != "" {
		base := cfg.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid github base url: %w", err)
		}
		client.BaseURL = u
	}

	return &Tool{client: client, authenticated: cfg.token != ""}, nil
}

// Register adds every GitHub tool to reg.
func (t *Tool) Register(reg *registry.Registry) {
	reg.Register(
		registry.Define[SearchArgs](SearchToolName, "Search for GitHub repositories by query (e.g., 'python machine learning', 'user:microsoft')"),
		registry.Typed(t.SearchRepositories),
	)
	reg.Register(
		registry.Define[RepoArgs](RepoInfoToolName, "Get detailed information about a specific GitHub repository"),
		registry.Typed(t.RepositoryInfo),
	)
	reg.Register(
		registry.Define[FileArgs](FileToolName, "Get the content of a specific file from a GitHub repository"),
		registry.Typed(t.FileContent),
	)
	reg.Register(
		registry.Define[ListArgs](ListToolName, "List files and directories in a GitHub repository path"),
		registry.Typed(t.ListFiles),
	)
	reg.Register(
		registry.Define[AuthArgs](AuthToolName, "Check GitHub authentication status and rate limits"),
		registry.Typed(t.AuthStatus),
	)
}

// SearchRepositories returns the most starred repositories matching the query.
func (t *Tool) SearchRepositories(ctx context.Context, in *SearchArgs) (any, error) {
	if in.Query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidArguments)
	}
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	limit = min(limit, MaxSearchLimit)

	res, _, err := t.client.Search.Repositories(ctx, in.Query, &gh.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: gh.ListOptions{PerPage: limit},
	})
	if err != nil {
		return nil, wrapError(err, "search repositories")
	}

	repos := res.Repositories
	if len(repos) > limit {
		repos = repos[:limit]
	}
	return formatSearch(in.Query, repos), nil
}

// RepositoryInfo describes one repository.
func (t *Tool) RepositoryInfo(ctx context.Context, in *RepoArgs) (any, error) {
	if err := requireRepo(in.Owner, in.Repo); err != nil {
		return nil, err
	}
	repo, _, err := t.client.Repositories.Get(ctx, in.Owner, in.Repo)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: repository '%s/%s' not found or is private", ErrNotFound, in.Owner, in.Repo)
		}
		return nil, wrapError(err, "get repository info")
	}
	return formatRepository(repo), nil
}

// FileContent returns a text file. A 404 on main is retried on master.
func (t *Tool) FileContent(ctx context.Context, in *FileArgs) (any, error) {
	if err := requireRepo(in.Owner, in.Repo); err != nil {
		return nil, err
	}
	if in.FilePath == "" {
		return nil, fmt.Errorf("%w: file_path is required", domain.ErrInvalidArguments)
	}

	branch := defaultBranch(in.Branch)
	file, dir, err := t.contents(ctx, in.Owner, in.Repo, in.FilePath, &branch)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: file '%s' not found in '%s/%s' (tried branches: %s)",
				ErrNotFound, in.FilePath, in.Owner, in.Repo, triedBranches(in.Branch))
		}
		return nil, wrapError(err, "get file content")
	}
	if file == nil {
		kind := "dir"
		if len(dir) == 0 {
			kind = "unknown"
		}
		return nil, fmt.Errorf("%w: '%s' is not a file (it's a %s)", domain.ErrInvalidArguments, in.FilePath, kind)
	}
	if file.GetType() != "file" {
		return nil, fmt.Errorf("%w: '%s' is not a file (it's a %s)", domain.ErrInvalidArguments, in.FilePath, file.GetType())
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("cannot decode file '%s': %w", in.FilePath, err)
	}
	if !isText(content) {
		return nil, fmt.Errorf("cannot decode file '%s': it may be a binary file", in.FilePath)
	}
	return formatFile(in.Owner, in.Repo, in.FilePath, branch, file.GetSize(), content), nil
}

// ListFiles lists a directory, directories first. A 404 on main is retried
// on master.
func (t *Tool) ListFiles(ctx context.Context, in *ListArgs) (any, error) {
	if err := requireRepo(in.Owner, in.Repo); err != nil {
		return nil, err
	}

	branch := defaultBranch(in.Branch)
	file, dir, err := t.contents(ctx, in.Owner, in.Repo, in.Path, &branch)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: path '%s' not found in '%s/%s' (tried branches: %s)",
				ErrNotFound, in.Path, in.Owner, in.Repo, triedBranches(in.Branch))
		}
		return nil, wrapError(err, "list directory")
	}
	if file != nil {
		return nil, fmt.Errorf("%w: '%s' is not a directory", domain.ErrInvalidArguments, in.Path)
	}
	return formatListing(in.Owner, in.Repo, in.Path, branch, dir), nil
}

// AuthStatus reports whether a token is configured and the current core
// rate limit.
func (t *Tool) AuthStatus(ctx context.Context, _ *AuthArgs) (any, error) {
	var b strings.Builder
	b.WriteString("GitHub Authentication Status\n\n")

	if t.authenticated {
		user, _, err := t.client.Users.Get(ctx, "")
		if err != nil {
			if isUnauthorized(err) {
				b.WriteString("Authenticated: no (token rejected)\n")
			} else {
				return nil, wrapError(err, "get authenticated user")
			}
		} else {
			fmt.Fprintf(&b, "Authenticated: yes (as %s)\n", user.GetLogin())
		}
	} else {
		b.WriteString("Authenticated: no (public API only)\n")
	}

	limits, _, err := t.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, wrapError(err, "get rate limit")
	}
	core := limits.GetCore()
	if core == nil {
		b.WriteString("Rate limit: unknown\n")
		return b.String(), nil
	}
	fmt.Fprintf(&b, "Rate limit: %d/%d remaining\n", core.Remaining, core.Limit)
	if !core.Reset.IsZero() {
		fmt.Fprintf(&b, "Resets at: %s\n", core.Reset.UTC().Format("2006-01-02 15:04:05 MST"))
	}
	return b.String(), nil
}

// contents fetches a path and retries on master when main is missing. On
// return branch names the branch that answered.
func (t *Tool) contents(ctx context.Context, owner, repo, path string, branch *string) (*gh.RepositoryContent, []*gh.RepositoryContent, error) {
	file, dir, _, err := t.client.Repositories.GetContents(ctx, owner, repo, path, &gh.RepositoryContentGetOptions{Ref: *branch})
	if err != nil && isNotFound(err) && *branch == DefaultBranch {
		*branch = fallbackBranch
		file, dir, _, err = t.client.Repositories.GetContents(ctx, owner, repo, path, &gh.RepositoryContentGetOptions{Ref: *branch})
	}
	return file, dir, err
}

func defaultBranch(b string) string {
	if b == "" {
		return DefaultBranch
	}
	return b
}

func triedBranches(requested string) string {
	if b := defaultBranch(requested); b != DefaultBranch {
		return b
	}
	return DefaultBranch + ", " + fallbackBranch
}

func requireRepo(owner, repo string) error {
	if owner == "" || repo == "" {
		return fmt.Errorf("%w: owner and repo are required", domain.ErrInvalidArguments)
	}
	return nil
}

func statusCode(err error) int {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode
	}
	return 0
}

func isNotFound(err error) bool {
	return statusCode(err) == http.StatusNotFound
}

func isUnauthorized(err error) bool {
	return statusCode(err) == http.StatusUnauthorized
}

func wrapError(err error, op string) error {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%w: %s: rate limit exceeded, resets at %s", domain.ErrUpstream, op, rateErr.Rate.Reset.UTC().Format("15:04:05 MST"))
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrUpstream, op, err)
}
