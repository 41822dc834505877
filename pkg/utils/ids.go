package utils

import (
	"fmt"
	"sync/atomic"
	"time"
)

var idSeq uint64

// GenMessageID generates a unique message ID from the current UTC nanosecond
// timestamp and an atomic sequence number. The format is "msg-<timestamp>-<seq>".
func GenMessageID() string {
	n := time.Now().UTC().UnixNano()
	s := atomic.AddUint64(&idSeq, 1)
	return fmt.Sprintf("msg-%d-%d", n, s)
}

// GenChatID generates a unique chat ID. The format is "chat-<timestamp>-<seq>".
func GenChatID() string {
	n := time.Now().UTC().UnixNano()
	s := atomic.AddUint64(&idSeq, 1)
	return fmt.Sprintf("chat-%d-%d", n, s)
}

// GenFolderID generates a unique folder ID. The format is "folder-<timestamp>-<seq>".
func GenFolderID() string {
	n := time.Now().UTC().UnixNano()
	s := atomic.AddUint64(&idSeq, 1)
	return fmt.Sprintf("folder-%d-%d", n, s)
}
