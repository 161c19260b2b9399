package dialog

import "github.com/wanhafiz/suara/internal/reply"

// Page identifies a navigable frontend page.
type Page string

const (
	PageSTR       Page = "str"
	PageSTRApply  Page = "str_apply"
	PageSara      Page = "sara"
	PageReminders Page = "reminders"
	PageMain      Page = "main"
	PageQR        Page = "qr"
)

// pageRoutes maps a page to the frontend route the client should open. The QR
// widget lives on the main page, so PageQR routes there.
var pageRoutes = map[Page]string{
	PageSTR:       "/str",
	PageSTRApply:  "/str-apply",
	PageSara:      "/sara",
	PageReminders: "/reminders",
	PageMain:      "/main",
	PageQR:        "/main",
}

// RouteFor returns the frontend route for page. ok is false for pages with no
// registered route; callers fall back to the root route.
func RouteFor(page Page) (route string, ok bool) {
	route, ok = pageRoutes[page]
	return route, ok
}

// pageNames holds the spoken name of each page per reply language, used when
// asking "do you want to open <page>?".
var pageNames = map[Page]map[reply.Language]string{
	PageSTR: {
		reply.LangBM: "STR",
		reply.LangBI: "STR",
		reply.LangBC: "STR",
		reply.LangHK: "STR",
	},
	PageSTRApply: {
		reply.LangBM: "Permohonan STR",
		reply.LangBI: "STR Application",
		reply.LangBC: "STR申请",
		reply.LangHK: "STR申請",
	},
	PageSara: {
		reply.LangBM: "MyKasih",
		reply.LangBI: "MyKasih",
		reply.LangBC: "MyKasih",
		reply.LangHK: "MyKasih",
	},
	PageReminders: {
		reply.LangBM: "Peringatan",
		reply.LangBI: "Reminders",
		reply.LangBC: "提醒",
		reply.LangHK: "提醒",
	},
	PageMain: {
		reply.LangBM: "Utama",
		reply.LangBI: "Home",
		reply.LangBC: "主页",
		reply.LangHK: "主頁",
	},
	PageQR: {
		reply.LangBM: "Kod QR",
		reply.LangBI: "QR Code",
		reply.LangBC: "二维码",
		reply.LangHK: "二維碼",
	},
}

// PageName returns the spoken name of page in lang, falling back to the
// Bahasa Melayu name and finally to the raw page id.
func PageName(page Page, lang reply.Language) string {
	names, ok := pageNames[page]
	if !ok {
		return string(page)
	}
	if name, ok := names[lang]; ok {
		return name
	}
	if name, ok := names[reply.LangBM]; ok {
		return name
	}
	return string(page)
}

// menuEntry wires an idle action to its spoken page, if the action navigates.
type menuEntry struct {
	action Action
	page   Page
	hasPage bool
}

// actionMenu is the idle-state action table. Order matters only for prompt
// rendering; lookup goes through actionPage.
var actionMenu = []menuEntry{
	{action: ActionCheckSTRStatus, page: PageSTR, hasPage: true},
	{action: ActionCheckMyKasihBalance, page: PageSara, hasPage: true},
	{action: ActionApplySTR, page: PageSTRApply, hasPage: true},
	{action: ActionCheckReminders, page: PageReminders, hasPage: true},
	{action: ActionGoHome, page: PageMain, hasPage: true},
	{action: ActionOpenQR, page: PageQR, hasPage: true},
	{action: ActionInitiateAddRep},
	{action: ActionUnknown},
}

// actionPage returns the page an action navigates to, if any.
func actionPage(a Action) (Page, bool) {
	for _, e := range actionMenu {
		if e.action == a {
			return e.page, e.hasPage
		}
	}
	return "", false
}
