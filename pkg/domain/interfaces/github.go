package interfaces

import "context"

// GitHubClient defines operations for interacting with GitHub API
type GitHubClient interface {
	// LatestCommitSHA returns the SHA of the head commit of ref
	LatestCommitSHA(ctx context.Context, owner, repo, ref string) (string, error)
}
