package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func ExampleLedger_Claim() {
	ledger, _ := NewLedger(newMemoryStore(), "outbox-publisher", 7*24*time.Hour)
	eventID := uuid.MustParse("0b6f7a34-9d1c-4f0e-8f59-3f4b7b0c2d11")

	for i := 0; i < 2; i++ {
		first, _ := ledger.Claim(context.Background(), eventID)
		if first {
			fmt.Println("publish membership.approved")
			continue
		}
		fmt.Println("skip duplicate")
	}
	// Output:
	// publish membership.approved
	// skip duplicate
}
