package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/dfryer1193/newsroom/article/domain"
	"github.com/google/go-github/v75/github"
)

var _ domain.BlobStore = (*GithubBlobStore)(nil)

// GithubBlobStore reads article markdown from a GitHub repository through the contents API.
type GithubBlobStore struct {
	client  *github.Client
	owner   string
	gitRepo string
	ref     string
	root    string
}

// NewGithubBlobStore creates a GithubBlobStore reading files under root at ref.
// An empty ref reads from the repository's default branch.
func NewGithubBlobStore(client *github.Client, owner string, gitRepo string, ref string, root string) *GithubBlobStore {
	return &GithubBlobStore{
		client:  client,
		owner:   owner,
		gitRepo: gitRepo,
		ref:     ref,
		root:    strings.Trim(root, "/"),
	}
}

// GetBytes fetches the contents of the file at p.
func (g *GithubBlobStore) GetBytes(ctx context.Context, p string) ([]byte, error) {
	filePath := strings.TrimPrefix(path.Clean("/"+p), "/")
	if filePath == "" {
		return nil, fmt.Errorf("github: invalid blob path %q", p)
	}
	if g.root != "" {
		filePath = path.Join(g.root, filePath)
	}

	ref := g.ref
	if ref == "" {
		var err error
		if ref, err = g.GetDefaultBranchName(ctx); err != nil {
			return nil, err
		}
	}

	return g.GetFileContents(ctx, filePath, ref)
}

// GetFileContents fetches the contents of a file at a specific ref (branch, tag, or commit SHA).
func (g *GithubBlobStore) GetFileContents(ctx context.Context, filePath string, ref string) ([]byte, error) {
	op := fmt.Sprintf("getting file %s at ref %s", filePath, ref)
	fileContent, _, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.gitRepo, filePath, &github.RepositoryContentGetOptions{
		Ref: ref,
	})
	if err != nil {
		return nil, handleGithubError(op, err)
	}

	if fileContent == nil {
		return nil, fmt.Errorf("github: %s returned a directory: %w", op, domain.ErrBlobNotFound)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return nil, fmt.Errorf("github: %s failed to decode content: %w", op, err)
	}

	return []byte(content), nil
}

// GetRepoFullName returns the repository's full name (e.g., "owner/repo").
func (g *GithubBlobStore) GetRepoFullName() string {
	return fmt.Sprintf("%s/%s", g.owner, g.gitRepo)
}

// GetDefaultBranchName fetches the repository metadata and returns the name of the default branch.
func (g *GithubBlobStore) GetDefaultBranchName(ctx context.Context) (string, error) {
	op := fmt.Sprintf("getting repository info for %s", g.GetRepoFullName())
	repo, _, err := g.client.Repositories.Get(ctx, g.owner, g.gitRepo)
	if err != nil {
		return "", handleGithubError(op, err)
	}
	return repo.GetDefaultBranch(), nil
}

// handleGithubError inspects an error from the go-github client and returns a more informative, structured error.
// 404 responses wrap domain.ErrBlobNotFound.
func handleGithubError(op string, err error) error {
	if err == nil {
		return nil
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		if errResp.Response.StatusCode == http.StatusNotFound {
			return fmt.Errorf("github: %s: %w", op, domain.ErrBlobNotFound)
		}
		return fmt.Errorf("github: %s failed with status %d: %s", op, errResp.Response.StatusCode, errResp.Message)
	}

	return fmt.Errorf("github: %s failed: %w", op, err)
}
