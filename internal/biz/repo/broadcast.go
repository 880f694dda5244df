package repo

import "github.com/arian-lol/msg-mirror/internal/biz/domain"

// Broadcaster delivers an intent to out-of-process consumers on the same device
type Broadcaster interface {
	Broadcast(intent domain.Intent) error
}

// PermissionChecker answers whether the host granted a runtime permission
type PermissionChecker interface {
	HasReadSms() bool
}
