package ports

// Observer receives operational events from the application layer
type Observer interface {
	ObserveHandshake(state string)
	ObserveBatchItem(operation string, err error)
}
