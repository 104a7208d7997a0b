package placeholder

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	lowerAlnum = "abcdefghijklmnopqrstuvwxyz0123456789"
	mixedAlnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	hexDigits  = "0123456789abcdef"
)

var (
	firstNames = []string{"Ada", "Alan", "Barbara", "Dennis", "Edsger", "Frances", "Grace", "Ken", "Linus", "Margaret", "Niklaus", "Radia"}
	lastNames  = []string{"Allen", "Hamilton", "Hopper", "Kernighan", "Knuth", "Liskov", "Lovelace", "Perlman", "Ritchie", "Thompson", "Torvalds", "Wirth"}
	words      = []string{"alpha", "bridge", "cobalt", "delta", "ember", "falcon", "granite", "harbor", "indigo", "juniper", "kestrel", "lumen", "meadow", "nimbus", "orbit", "prism"}
	colors     = []string{"red", "orange", "yellow", "green", "blue", "indigo", "violet", "black", "white", "teal"}
	countries  = []string{"BE", "BR", "CA", "DE", "ES", "FR", "IN", "JP", "NL", "US"}
	currencies = []string{"AUD", "BRL", "CAD", "CHF", "EUR", "GBP", "INR", "JPY", "USD"}
	locales    = []string{"de", "en", "es", "fr", "it", "ja", "nl", "pt"}
	cities     = []string{"Antwerp", "Austin", "Berlin", "Lisbon", "Osaka", "Porto", "Toronto", "Utrecht"}
	domains    = []string{"example.com", "example.net", "example.org"}
)

func builtins() []Generator {
	return []Generator{
		{Name: "guid", Description: "v4 UUID", Generate: genUUID},
		{Name: "randomUUID", Description: "v4 UUID", Generate: genUUID},
		{Name: "timestamp", Description: "current UNIX timestamp in seconds", Generate: func(s *Source) string {
			return strconv.FormatInt(s.Now().Unix(), 10)
		}},
		{Name: "isoTimestamp", Description: "current ISO-8601 timestamp (UTC)", Generate: func(s *Source) string {
			return s.Now().UTC().Format("2006-01-02T15:04:05.000Z")
		}},
		{Name: "randomInt", Description: "integer between 0 and 1000", Generate: func(s *Source) string {
			return strconv.Itoa(s.Intn(1001))
		}},
		{Name: "randomBoolean", Description: "true or false", Generate: func(s *Source) string {
			return strconv.FormatBool(s.Intn(2) == 1)
		}},
		{Name: "randomAlphaNumeric", Description: "single lower-case letter or digit", Generate: func(s *Source) string {
			return s.String(lowerAlnum, 1)
		}},
		{Name: "randomPassword", Description: "15 character alphanumeric password", Generate: func(s *Source) string {
			return s.String(mixedAlnum, 15)
		}},
		{Name: "randomHexColor", Description: "hex color such as #1f8a3c", Generate: func(s *Source) string {
			return "#" + s.String(hexDigits, 6)
		}},
		{Name: "randomColor", Description: "color name", Generate: func(s *Source) string { return s.Pick(colors) }},
		{Name: "randomWord", Description: "single word", Generate: func(s *Source) string { return s.Pick(words) }},
		{Name: "randomWords", Description: "two to four words", Generate: genWords},
		{Name: "randomFirstName", Description: "first name", Generate: func(s *Source) string { return s.Pick(firstNames) }},
		{Name: "randomLastName", Description: "last name", Generate: func(s *Source) string { return s.Pick(lastNames) }},
		{Name: "randomFullName", Description: "first and last name", Generate: func(s *Source) string {
			return s.Pick(firstNames) + " " + s.Pick(lastNames)
		}},
		{Name: "randomUserName", Description: "user name such as Grace.Hopper", Generate: func(s *Source) string {
			return s.Pick(firstNames) + "." + s.Pick(lastNames)
		}},
		{Name: "randomEmail", Description: "e-mail address on a reserved domain", Generate: func(s *Source) string {
			return strings.ToLower(s.Pick(firstNames)+"."+s.Pick(lastNames)) + "@" + s.Pick(domains)
		}},
		{Name: "randomExampleEmail", Description: "e-mail address on example.com", Generate: func(s *Source) string {
			return strings.ToLower(s.Pick(firstNames)) + "@example.com"
		}},
		{Name: "randomPhoneNumber", Description: "ten digit phone number", Generate: func(s *Source) string {
			return fmt.Sprintf("%03d-%03d-%04d", 200+s.Intn(800), s.Intn(1000), s.Intn(10000))
		}},
		{Name: "randomIP", Description: "IPv4 address", Generate: func(s *Source) string {
			return fmt.Sprintf("%d.%d.%d.%d", 1+s.Intn(254), s.Intn(256), s.Intn(256), 1+s.Intn(254))
		}},
		{Name: "randomIPV6", Description: "IPv6 address", Generate: func(s *Source) string {
			groups := make([]string, 8)
			for i := range groups {
				groups[i] = s.String(hexDigits, 4)
			}
			return strings.Join(groups, ":")
		}},
		{Name: "randomMACAddress", Description: "MAC address", Generate: func(s *Source) string {
			octets := make([]string, 6)
			for i := range octets {
				octets[i] = s.String(hexDigits, 2)
			}
			return strings.Join(octets, ":")
		}},
		{Name: "randomDomainName", Description: "domain name", Generate: func(s *Source) string {
			return s.Pick(words) + "." + s.Pick(domains)
		}},
		{Name: "randomUrl", Description: "https URL", Generate: func(s *Source) string {
			return "https://" + s.Pick(words) + "." + s.Pick(domains)
		}},
		{Name: "randomCity", Description: "city name", Generate: func(s *Source) string { return s.Pick(cities) }},
		{Name: "randomCountryCode", Description: "ISO 3166 alpha-2 country code", Generate: func(s *Source) string { return s.Pick(countries) }},
		{Name: "randomCurrencyCode", Description: "ISO 4217 currency code", Generate: func(s *Source) string { return s.Pick(currencies) }},
		{Name: "randomLocale", Description: "two letter language code", Generate: func(s *Source) string { return s.Pick(locales) }},
		{Name: "randomPrice", Description: "price between 0.00 and 1000.00", Generate: func(s *Source) string {
			return fmt.Sprintf("%d.%02d", s.Intn(1000), s.Intn(100))
		}},
		{Name: "randomDatePast", Description: "date within the last year", Generate: func(s *Source) string {
			return s.Now().AddDate(0, 0, -1-s.Intn(365)).UTC().Format(time.RFC3339)
		}},
		{Name: "randomDateFuture", Description: "date within the next year", Generate: func(s *Source) string {
			return s.Now().AddDate(0, 0, 1+s.Intn(365)).UTC().Format(time.RFC3339)
		}},
	}
}

func genUUID(s *Source) string {
	id, err := uuid.NewRandomFromReader(s)
	if err != nil {
		// Source.Read never fails.
		return uuid.Nil.String()
	}
	return id.String()
}

func genWords(s *Source) string {
	n := 2 + s.Intn(3)
	out := make([]string, n)
	for i := range out {
		out[i] = s.Pick(words)
	}
	return strings.Join(out, " ")
}
