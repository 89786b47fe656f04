package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
	"github.com/coronasco/cryptoscalpingfvg/internal/repository"
)

const (
	notifyCooldown = 5 * time.Minute
	alertDedupeTTL = 30 * time.Minute
)

// alertStatuses are the transitions worth a push. WAITING->FILLED and the
// take-profit / stop hits matter to a phone, EXPIRED and INVALIDATED do not.
var alertStatuses = map[domain.SetupStatus]struct{}{
	domain.StatusTriggered: {},
	domain.StatusFilled:    {},
	domain.StatusTP1:       {},
	domain.StatusTP2:       {},
	domain.StatusSL:        {},
}

// sendAlerts pushes FCM notifications for status transitions on setups above
// the score threshold. Dedupe is two-layered: a per-symbol cooldown in memory
// and a per-(setup,status) key in the cache so restarts do not re-alert.
func (uc *ScreenerUsecase) sendAlerts(ctx context.Context, setups []domain.Setup, events []domain.SetupEvent) {
	if uc.fcmClient == nil || !uc.fcmClient.IsEnabled() {
		return
	}

	tokens := uc.tokenRepo.GetAllTokens()
	if len(tokens) == 0 {
		return
	}

	byID := make(map[string]domain.Setup, len(setups))
	for _, s := range setups {
		byID[s.ID] = s
	}

	now := time.Now()

	for _, ev := range events {
		if _, ok := alertStatuses[ev.ToStatus]; !ok {
			continue
		}
		setup, ok := byID[ev.SetupID]
		if !ok || setup.Score < uc.alertMinScore {
			continue
		}

		uc.mu.RLock()
		lastNotified, exists := uc.notifiedCoins[setup.Symbol]
		uc.mu.RUnlock()
		if exists && now.Sub(lastNotified) < notifyCooldown {
			continue
		}

		dedupeKey := fmt.Sprintf("alerted:%s:%s", ev.SetupID, ev.ToStatus)
		if uc.cache != nil {
			var sent bool
			if ok, err := uc.cache.Get(ctx, dedupeKey, &sent); err == nil && ok {
				continue
			}
		}

		title, body := formatAlert(setup, ev)
		data := map[string]string{
			"setupId":   setup.ID,
			"symbol":    setup.Symbol,
			"direction": string(setup.Direction),
			"status":    string(setup.Status),
			"score":     fmt.Sprintf("%d", setup.Score),
			"entry":     fmt.Sprintf("%.5f", setup.EntryPrice),
			"sl":        fmt.Sprintf("%.5f", setup.StopLoss),
			"tp1":       fmt.Sprintf("%.5f", setup.TP1),
		}

		if err := uc.fcmClient.SendMulticast(ctx, tokens, title, body, data); err != nil {
			log.Printf("Error sending notification for %s: %v", setup.Symbol, err)
			continue
		}
		log.Printf("Sent %s alert for %s to %d devices", ev.ToStatus, setup.Symbol, len(tokens))

		uc.mu.Lock()
		uc.notifiedCoins[setup.Symbol] = now
		uc.mu.Unlock()

		if uc.cache != nil {
			if err := uc.cache.Set(ctx, dedupeKey, true, alertDedupeTTL); err != nil {
				log.Printf("Error caching alert dedupe key %s: %v", dedupeKey, err)
			}
		}
	}

	// Cleanup cooldown entries well past their window.
	uc.mu.Lock()
	for symbol, ts := range uc.notifiedCoins {
		if now.Sub(ts) > notifyCooldown*2 {
			delete(uc.notifiedCoins, symbol)
		}
	}
	uc.mu.Unlock()
}

func formatAlert(setup domain.Setup, ev domain.SetupEvent) (title, body string) {
	display := repository.DisplaySymbol(setup.Symbol)

	switch ev.ToStatus {
	case domain.StatusTriggered:
		title = fmt.Sprintf("⚡ %s %s - Price at Entry Zone", display, setup.Direction)
	case domain.StatusFilled:
		title = fmt.Sprintf("🚀 %s %s - Entry Filled", display, setup.Direction)
	case domain.StatusTP1:
		title = fmt.Sprintf("✅ %s %s - TP1 Hit", display, setup.Direction)
	case domain.StatusTP2:
		title = fmt.Sprintf("🏆 %s %s - TP2 Hit", display, setup.Direction)
	case domain.StatusSL:
		title = fmt.Sprintf("🛑 %s %s - Stop Loss Hit", display, setup.Direction)
	default:
		title = fmt.Sprintf("%s %s - %s", display, setup.Direction, ev.ToStatus)
	}

	body = fmt.Sprintf("Score: %d | Entry: %.5f | SL: %.5f | TP1: %.5f | RR: %.2f",
		setup.Score, setup.EntryPrice, setup.StopLoss, setup.TP1, setup.RRToTP1)
	return title, body
}
