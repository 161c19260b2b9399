package intent

import (
	"fmt"
	"strings"

	"github.com/wanhafiz/suara/internal/dialog"
)

// menuItem describes one idle action for the model.
type menuItem struct {
	action dialog.Action
	desc   string
}

var idleMenu = []menuItem{
	{dialog.ActionCheckSTRStatus, "User asks about STR/Sumbangan Tunai status."},
	{dialog.ActionCheckMyKasihBalance, "User asks about MyKasih/SARA balance."},
	{dialog.ActionApplySTR, "User wants to apply for STR."},
	{dialog.ActionCheckReminders, "User asks about reminders or appointments."},
	{dialog.ActionGoHome, "User wants to go to main page/home."},
	{dialog.ActionOpenQR, "User wants to open QR code, scan QR, or make payment."},
	{dialog.ActionInitiateAddRep, "User wants to AUTHORIZE someone (child/daughter) to use their ID/money."},
	{dialog.ActionUnknown, "Unrelated topic."},
}

// idlePrompt is built once; the menu listing keeps the model's action ids in
// sync with the machine's action set.
var idlePrompt = func() string {
	var menu strings.Builder
	for _, item := range idleMenu {
		fmt.Fprintf(&menu, "- %s: %s\n", item.action, item.desc)
	}
	return fmt.Sprintf(`Act as a classifier. Map user text to ONE action_id from:
%s
RULES:
1. "anak perempuan", "memberikan", "benarkan", "authorize", "guna wang", "use money" -> initiate_add_rep
2. "check STR", "STR status", "STR balance", "Sumbangan Tunai" -> check_str_status
3. "check MyKasih", "SARA", "MyKasih balance" -> check_mykasih_balance
4. "apply STR", "mohon STR" -> apply_str
5. "reminders", "appointments", "temujanji" -> check_reminders
6. "home", "main page", "balik" -> go_home
7. "QR", "scan", "payment", "bayar", "imbas", "pay" -> open_qr
Output JSON ONLY: { "action_id": "..." }`, menu.String())
}()

const (
	askICPrompt = `Extract IC number (digits only). Output JSON: { "extracted_ic": "123456..." }`

	confirmICPrompt = `Did user confirm (Yes/Betul) or deny (No/Salah)? Output JSON: { "confirmation": true/false }`

	askAmountPrompt = `Extract amount (number only). Output JSON: { "extracted_amount": 100 }`

	askNavigationPrompt = `User is asked if they want to navigate to a page.
Did they say YES (ya/ok/betul/yes/sure/boleh) or NO (tidak/no/taknak)?
Output JSON: { "navigate_confirmed": true/false }`
)

// promptFor selects the system instruction for step.
func promptFor(step dialog.Step) string {
	switch step {
	case dialog.StepAskIC:
		return askICPrompt
	case dialog.StepConfirmIC:
		return confirmICPrompt
	case dialog.StepAskAmount:
		return askAmountPrompt
	case dialog.StepAskNavigation:
		return askNavigationPrompt
	default:
		return idlePrompt
	}
}
