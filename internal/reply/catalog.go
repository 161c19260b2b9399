package reply

import (
	"fmt"
	"sort"
)

// Key identifies a single localizable message in the catalog.
type Key string

// Message keys used by the dialogue state machine. Adding a key here without
// a BM entry in [DefaultCatalog] fails TestDefaultCatalog_Exhaustive.
const (
	KeyEmptyInput    Key = "empty_input"
	KeyNotUnderstood Key = "not_understood"
	KeyOnlyAidTopics Key = "only_aid_topics"

	KeyAskIC        Key = "ask_ic"
	KeyConfirmIC    Key = "confirm_ic"
	KeyRepeatIC     Key = "repeat_ic"
	KeyRepeatNumber Key = "repeat_number"
	KeyAskAmount    Key = "ask_amount"
	KeyAmountSet    Key = "amount_set"

	KeySTRApproved    Key = "str_approved"
	KeySTRPending     Key = "str_pending"
	KeyMyKasihBalance Key = "mykasih_balance"

	KeyApplySTR       Key = "action_apply_str"
	KeyCheckReminders Key = "action_check_reminders"
	KeyOpenQR         Key = "action_open_qr"
	KeyGoHome         Key = "action_go_home"

	KeyNavAsk       Key = "nav_ask"
	KeyNavOpening   Key = "nav_opening"
	KeyNavCancelled Key = "nav_cancelled"
)

// Catalog holds the message-key × language → template table.
// Templates use fmt.Sprintf verbs; the argument order is fixed per key and
// identical across languages. Catalog is immutable after construction and
// safe for concurrent use.
type Catalog struct {
	messages map[Key]map[Language]string
}

// NewCatalog builds a Catalog from the given table. The table is not copied;
// callers must not mutate it afterwards.
func NewCatalog(table map[Key]map[Language]string) *Catalog {
	return &Catalog{messages: table}
}

// Render formats the message identified by key in the given language.
// When the language has no entry the BM template is used. When the key is
// unknown entirely an empty string is returned; [Validate] exists so this
// never happens for keys the state machine uses.
func (c *Catalog) Render(key Key, lang Language, args ...any) string {
	byLang, ok := c.messages[key]
	if !ok {
		return ""
	}
	tmpl, ok := byLang[lang]
	if !ok || tmpl == "" {
		tmpl = byLang[LangBM]
	}
	if tmpl == "" {
		return ""
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// Has reports whether key has any entry in the catalog.
func (c *Catalog) Has(key Key) bool {
	_, ok := c.messages[key]
	return ok
}

// Keys returns all message keys in the catalog, sorted for stable test output.
func (c *Catalog) Keys() []Key {
	keys := make([]Key, 0, len(c.messages))
	for k := range c.messages {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Validate checks that every key carries a non-empty BM entry, since BM is
// the fallback for every other language. Returns an error naming the first
// offending key. Intended to be called from a test, not at runtime.
func (c *Catalog) Validate() error {
	for _, key := range c.Keys() {
		if c.messages[key][LangBM] == "" {
			return fmt.Errorf("reply: message %q has no BM entry", key)
		}
	}
	return nil
}

// DefaultCatalog is the built-in message table covering all four display
// languages for every key the dialogue state machine emits.
var DefaultCatalog = NewCatalog(map[Key]map[Language]string{
	KeyEmptyInput: {
		LangBM: "Maaf, saya tidak dengar apa-apa. Sila cuba sekali lagi.",
		LangBI: "Sorry, I didn't hear anything. Please try again.",
		LangBC: "抱歉，我没有听到任何声音。请再试一次。",
		LangHK: "唔好意思，我咩都聽唔到。請再試一次。",
	},
	KeyNotUnderstood: {
		LangBM: "Maaf tak faham.",
		LangBI: "Sorry, I didn't understand.",
		LangBC: "抱歉，我不明白。",
		LangHK: "唔好意思，我唔明白。",
	},
	KeyOnlyAidTopics: {
		LangBM: "Maaf, saya hanya boleh bantu urusan STR dan MyKasih.",
		LangBI: "Sorry, I can only help with STR and MyKasih matters.",
		LangBC: "抱歉，我只能帮助处理STR和MyKasih的事务。",
		LangHK: "唔好意思，我只可以幫你處理STR同MyKasih嘅事。",
	},
	KeyAskIC: {
		LangBM: "Boleh. Sila berikan nombor Kad Pengenalan anak anda?",
		LangBI: "Sure. Please tell me your child's IC number.",
		LangBC: "可以。请提供您孩子的身份证号码。",
		LangHK: "可以。請講你小朋友嘅身份證號碼。",
	},
	KeyConfirmIC: {
		LangBM: "Saya dengar %s. Adakah betul?",
		LangBI: "I heard %s. Is that correct?",
		LangBC: "我听到的是%s。对吗？",
		LangHK: "我聽到係%s。啱唔啱？",
	},
	KeyRepeatIC: {
		LangBM: "Maaf, ulang nombor IC sahaja.",
		LangBI: "Sorry, please repeat the IC number only.",
		LangBC: "抱歉，请只重复身份证号码。",
		LangHK: "唔好意思，請淨係重複身份證號碼。",
	},
	KeyRepeatNumber: {
		LangBM: "Maaf. Sila sebut nombor sekali lagi.",
		LangBI: "Sorry. Please say the number again.",
		LangBC: "抱歉。请再说一次号码。",
		LangHK: "唔好意思。請再講一次個號碼。",
	},
	KeyAskAmount: {
		LangBM: "Baik. Berapa limit belanja?",
		LangBI: "Okay. What is the spending limit?",
		LangBC: "好的。消费限额是多少？",
		LangHK: "好。消費限額係幾多？",
	},
	KeyAmountSet: {
		LangBM: "Selesai. Limit RM%v ditetapkan.",
		LangBI: "Done. A limit of RM%v has been set.",
		LangBC: "完成。已设置RM%v的限额。",
		LangHK: "搞掂。已經設定咗RM%v嘅限額。",
	},
	KeySTRApproved: {
		LangBM: "Permohonan STR anda lulus. Bayaran seterusnya RM%v.",
		LangBI: "Your STR application is approved. The next payment is RM%v.",
		LangBC: "您的STR申请已获批准。下一笔付款为RM%v。",
		LangHK: "你嘅STR申請已經批准。下一筆付款係RM%v。",
	},
	KeySTRPending: {
		LangBM: "Permohonan STR anda masih dalam proses.",
		LangBI: "Your STR application is still being processed.",
		LangBC: "您的STR申请仍在处理中。",
		LangHK: "你嘅STR申請仲喺度處理緊。",
	},
	KeyMyKasihBalance: {
		LangBM: "Baki MyKasih anda tinggal RM%v.",
		LangBI: "Your MyKasih balance is RM%v.",
		LangBC: "您的MyKasih余额为RM%v。",
		LangHK: "你嘅MyKasih結餘係RM%v。",
	},
	KeyApplySTR: {
		LangBM: "Anda boleh mohon STR di halaman permohonan.",
		LangBI: "You can apply for STR on the application page.",
		LangBC: "你可以在申请页面申请STR。",
		LangHK: "你可以喺申請頁面申請STR。",
	},
	KeyCheckReminders: {
		LangBM: "Anda ada peringatan yang belum selesai.",
		LangBI: "You have pending reminders.",
		LangBC: "你有待处理的提醒。",
		LangHK: "你有未處理嘅提醒。",
	},
	KeyOpenQR: {
		LangBM: "Saya akan buka kod QR untuk bayaran.",
		LangBI: "I will open the QR code for payment.",
		LangBC: "我将打开二维码进行支付。",
		LangHK: "我會打開二維碼畀你付款。",
	},
	KeyGoHome: {
		LangBM: "Baiklah, kembali ke halaman utama.",
		LangBI: "Okay, returning to the main page.",
		LangBC: "好的，返回主页。",
		LangHK: "好，返去主頁。",
	},
	KeyNavAsk: {
		LangBM: "Adakah anda mahu pergi ke halaman %s?",
		LangBI: "Would you like to go to the %s page?",
		LangBC: "你要去%s页面吗？",
		LangHK: "你想唔想去%s頁面？",
	},
	KeyNavOpening: {
		LangBM: "Membuka halaman %s...",
		LangBI: "Opening the %s page...",
		LangBC: "正在打开%s页面...",
		LangHK: "而家打開%s頁面...",
	},
	KeyNavCancelled: {
		LangBM: "Baiklah, tidak buka halaman.",
		LangBI: "Okay, not opening the page.",
		LangBC: "好的，不打开页面。",
		LangHK: "好，唔開頁面。",
	},
})
