package cli

import (
	"fmt"
	"sync"

	"github.com/gabapcia/pegvault/internal/notify"
	"github.com/gabapcia/pegvault/internal/session"
	"github.com/gabapcia/pegvault/internal/walletsession"
)

// renderer prints queued notifications exactly once each, marking them
// observed so the relay can arm their expiry timers.
type renderer struct {
	store   *session.Store
	relay   *notify.Relay
	network walletsession.NetworkDescriptor

	mu   sync.Mutex
	seen map[string]bool
}

func newRenderer(store *session.Store, relay *notify.Relay, network walletsession.NetworkDescriptor) *renderer {
	return &renderer{
		store:   store,
		relay:   relay,
		network: network,
		seen:    make(map[string]bool),
	}
}

// flush prints every not-yet-rendered notification in queue order.
func (r *renderer) flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.store.Snapshot().Notifications {
		if r.seen[n.ID] {
			continue
		}
		r.seen[n.ID] = true

		fmt.Printf("[%s] %s: %s\n", n.Kind, n.Title, n.Message)
		if n.ChainHash != "" {
			fmt.Printf("        %s\n", r.network.TxURL(n.ChainHash))
		}

		r.relay.MarkObserved(n.ID)
	}
}

// watch flushes after every store mutation. The returned function removes
// the subscription.
func (r *renderer) watch() func() {
	return r.store.Subscribe(func(session.Snapshot) {
		r.flush()
	})
}

// printStatus dumps the session snapshot in a human-readable layout.
func printStatus(snap session.Snapshot, network walletsession.NetworkDescriptor) {
	if snap.Connected() {
		fmt.Printf("wallet:          %s\n", snap.WalletAddress)
		fmt.Printf("                 %s\n", network.AddressURL(snap.WalletAddress))
	} else {
		fmt.Println("wallet:          not connected")
	}

	networkState := "unknown"
	switch {
	case snap.ChainID == network.ChainID:
		networkState = fmt.Sprintf("%s (%d)", network.Name, snap.ChainID)
	case snap.ChainID != 0:
		networkState = fmt.Sprintf("wrong network (%d, want %d)", snap.ChainID, network.ChainID)
	}
	fmt.Printf("network:         %s\n", networkState)

	fmt.Printf("native balance:  %s %s\n", snap.NativeBalance, network.NativeCurrency.Symbol)
	fmt.Printf("receipt balance: %s\n", snap.ReceiptBalance)
	fmt.Printf("vault assets:    %s\n", snap.VaultTotalAssets)
	fmt.Printf("vault supply:    %s\n", snap.VaultTotalSupply)
	fmt.Printf("vault paused:    %t\n", snap.VaultPaused)

	if len(snap.Transactions) > 0 {
		fmt.Println("transactions:")
		for _, tx := range snap.Transactions {
			hash := tx.ChainHash
			if hash == "" {
				hash = "-"
			}
			fmt.Printf("  %-9s %-8s %12s  %s\n", tx.Kind, tx.Status, tx.Amount, hash)
		}
	}
}
