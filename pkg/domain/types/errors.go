package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify failures so that the HTTP boundary can map them to responses
var (
	ErrTagAuthentication   = goerr.NewTag("authentication")
	ErrTagInvalidPayload   = goerr.NewTag("invalid_payload")
	ErrTagSpawn            = goerr.NewTag("spawn")
	ErrTagDeployInProgress = goerr.NewTag("deploy_in_progress")
	ErrTagUpstreamPoll     = goerr.NewTag("upstream_poll")
	ErrTagStorage          = goerr.NewTag("storage")
	ErrTagConfig           = goerr.NewTag("config")
)
