// Package i18n provides static message catalogs for the languages the
// platform serves: French (default), English and Arabic. Catalogs are
// compiled in; missing keys fall back to French so a partially
// translated catalog never breaks a response.
package i18n

import "strings"

// Supported language codes.
const (
    LangFR = "fr"
    LangEN = "en"
    LangAR = "ar"
)

// DefaultLang is used when the request does not name a supported
// language.
const DefaultLang = LangFR

var catalogs = map[string]map[string]string{
    LangFR: {
        "booking.created":     "Votre réservation a été créée",
        "booking.confirmed":   "Votre réservation est confirmée",
        "booking.cancelled":   "Votre réservation a été annulée",
        "booking.unavailable": "Ces dates ne sont pas disponibles",
        "partner.pending":     "Votre candidature est en cours d'examen",
        "partner.rejected":    "Votre candidature a été refusée",
        "partner.suspended":   "Votre compte partenaire est suspendu",
        "partner.active":      "Votre compte partenaire est actif",
        "loft.not_found":      "Loft introuvable",
        "quote.total":         "Montant total",
        "quote.tax":           "Taxe de séjour",
        "quote.cleaning_fee":  "Frais de ménage",
    },
    LangEN: {
        "booking.created":     "Your reservation has been created",
        "booking.confirmed":   "Your reservation is confirmed",
        "booking.cancelled":   "Your reservation has been cancelled",
        "booking.unavailable": "These dates are not available",
        "partner.pending":     "Your application is under review",
        "partner.rejected":    "Your application has been rejected",
        "partner.suspended":   "Your partner account is suspended",
        "partner.active":      "Your partner account is active",
        "loft.not_found":      "Loft not found",
        "quote.total":         "Total amount",
        "quote.tax":           "Tourist tax",
        "quote.cleaning_fee":  "Cleaning fee",
    },
    LangAR: {
        "booking.created":     "تم إنشاء حجزك",
        "booking.confirmed":   "تم تأكيد حجزك",
        "booking.cancelled":   "تم إلغاء حجزك",
        "booking.unavailable": "هذه التواريخ غير متاحة",
        "partner.pending":     "طلبك قيد المراجعة",
        "partner.rejected":    "تم رفض طلبك",
        "partner.suspended":   "تم تعليق حساب الشريك الخاص بك",
        "partner.active":      "حساب الشريك الخاص بك نشط",
        "loft.not_found":      "العقار غير موجود",
        "quote.total":         "المبلغ الإجمالي",
        "quote.tax":           "ضريبة الإقامة",
        "quote.cleaning_fee":  "رسوم التنظيف",
    },
}

// Pick chooses the best supported language for an Accept-Language
// header. Matching is by primary subtag only ("en-US" matches "en");
// the first supported entry wins and anything else yields the default.
func Pick(acceptLanguage string) string {
    for _, part := range strings.Split(acceptLanguage, ",") {
        tag := strings.TrimSpace(part)
        if i := strings.IndexByte(tag, ';'); i >= 0 {
            tag = tag[:i]
        }
        if i := strings.IndexByte(tag, '-'); i >= 0 {
            tag = tag[:i]
        }
        tag = strings.ToLower(strings.TrimSpace(tag))
        if _, ok := catalogs[tag]; ok {
            return tag
        }
    }
    return DefaultLang
}

// T translates a message key into the given language. Unknown languages
// and untranslated keys fall back to the French catalog; a key missing
// there too is returned verbatim so the caller still gets something
// renderable.
func T(lang, key string) string {
    if cat, ok := catalogs[lang]; ok {
        if msg, ok := cat[key]; ok {
            return msg
        }
    }
    if msg, ok := catalogs[DefaultLang][key]; ok {
        return msg
    }
    return key
}
