package mock

//go:generate moq -out interfaces.go -pkg mock ../interfaces Spawner Process Notifier GitHubClient
