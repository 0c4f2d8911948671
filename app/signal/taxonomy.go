package signal

import "regexp"

// CategoryRule is the declarative scoring table for one category: keyword
// list, correlated signal types and structural regex cues. Keeping these as
// data rather than inline literals lets the tables be tested and tuned
// independently of the scoring algorithm.
type CategoryRule struct {
	Keywords []string
	Types    map[string]bool
	Patterns []*regexp.Regexp
}

func typeSet(types ...string) map[string]bool {
	set := make(map[string]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set
}

// taxonomy defines scoring rules for all seven categories. Keyword matching
// is case-insensitive substring containment over headline+description;
// patterns capture structural cues keywords miss (quarters and years for
// TIMING, competitor names for COMPETITIVE, headcount figures for TALENT).
var taxonomy = map[Category]CategoryRule{
	CategoryTiming: {
		Keywords: []string{
			"launch", "release", "announce", "unveil", "debut",
			"q1", "q2", "q3", "q4", "quarter", "quarterly",
			"seasonal", "holiday", "year-end", "fiscal",
			"timing", "schedule", "roadmap", "timeline",
			"coming soon", "upcoming", "planned", "slated",
			"availability", "rollout", "phase", "beta",
			"early access", "preview", "waitlist",
		},
		Types: typeSet("product_launch", "api_versioning", "sdk_update"),
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(q[1-4]|quarter)\b`),
			regexp.MustCompile(`\b(20\d{2})\b`),
			regexp.MustCompile(`(?i)\b(launch|release).*?(soon|date|schedule|timeline)\b`),
			regexp.MustCompile(`(?i)\b(beta|preview|early access)\b`),
		},
	},
	CategoryMessaging: {
		Keywords: []string{
			"position", "focus", "mission", "vision", "value",
			"announce", "statement", "message", "brand",
			"narrative", "story", "commitment", "priority",
			"emphasis", "highlight", "showcase", "promote",
			"champion", "advocate", "support", "enable",
			"empower", "transform", "revolutionize", "redefine",
			"leading", "pioneer", "innovate", "breakthrough",
		},
		Types: typeSet("partnership", "market_expansion", "announcement"),
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(position|positioning).*?(as|for|to)\b`),
			regexp.MustCompile(`(?i)\b(focus|focused|focusing).*?on\b`),
			regexp.MustCompile(`(?i)\b(mission|vision|commitment).*?(to|is)\b`),
			regexp.MustCompile(`(?i)\b(enable|empower|transform)\b`),
		},
	},
	CategoryICP: {
		Keywords: []string{
			"enterprise", "smb", "small business", "mid-market",
			"startup", "fortune 500", "b2b", "b2c",
			"segment", "target", "customer", "vertical",
			"industry", "sector", "market segment",
			"saas", "e-commerce", "retail", "fintech",
			"healthcare", "education", "government",
			"developer", "technical", "non-technical",
			"global", "regional", "local", "international",
		},
		Types: typeSet("market_expansion", "partnership", "hiring"),
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(target|targeting|targets).*?(market|segment|customer)\b`),
			regexp.MustCompile(`(?i)\b(enterprise|smb|mid-market|startup)\b`),
			regexp.MustCompile(`(?i)\b(b2b|b2c)\b`),
			regexp.MustCompile(`(?i)\b(vertical|industry|sector).*?(focus|expansion)\b`),
		},
	},
	CategoryCompetitive: {
		Keywords: []string{
			"competitor", "compete", "competition", "competitive",
			"versus", "vs", "alternative", "differentiation",
			"advantage", "edge", "superior", "better than",
			"market share", "leader", "challenger", "threat",
			"disruption", "disrupt", "challenge", "rivalry",
			"plaid", "adyen", "square", "paypal", "braintree",
			"unique", "only", "first", "exclusive",
			"benchmark", "outperform", "surpass",
		},
		Types: typeSet("competitive_move", "acquisition", "partnership"),
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(vs|versus|compared to|competing with)\b`),
			regexp.MustCompile(`(?i)\b(competitor|competition|competitive)\b`),
			regexp.MustCompile(`(?i)\b(plaid|adyen|square|paypal|braintree)\b`),
			regexp.MustCompile(`(?i)\b(differentiate|differentiation|advantage)\b`),
			regexp.MustCompile(`(?i)\b(market share|leader|leadership)\b`),
		},
	},
	CategoryProduct: {
		Keywords: []string{
			"product", "feature", "api", "sdk", "release",
			"version", "update", "enhancement", "improvement",
			"capability", "functionality", "integration",
			"platform", "service", "tool", "solution",
			"technology", "infrastructure", "architecture",
			"performance", "scalability", "reliability",
			"security", "compliance", "certification",
			"documentation", "developer experience", "dx",
		},
		Types: typeSet("sdk_update", "new_api_endpoint", "api_expansion",
			"api_enhancement", "product_launch", "developer_tools",
			"new_repository", "commit_activity"),
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(api|sdk|product|feature).*?(new|release|launch|update)\b`),
			regexp.MustCompile(`(?i)\b(version|v\d+\.\d+)\b`),
			regexp.MustCompile(`(?i)\b(repository|repo|github)\b`),
			regexp.MustCompile(`(?i)\b(developer|development|engineering)\b`),
		},
	},
	CategoryMarket: {
		Keywords: []string{
			"market", "industry", "trend", "growth", "expansion",
			"adoption", "demand", "opportunity", "landscape",
			"macroeconomic", "economic", "regulation", "regulatory",
			"compliance", "policy", "legislation", "law",
			"globalization", "digital transformation", "shift",
			"consumer behavior", "spending", "investment",
			"forecast", "projection", "estimate", "report",
			"research", "analysis", "study", "survey",
		},
		Types: typeSet("market_expansion", "regulatory", "industry_trend"),
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(market|industry).*?(grow|growth|expanding|expansion)\b`),
			regexp.MustCompile(`(?i)\b(trend|trending|shift|transformation)\b`),
			regexp.MustCompile(`(?i)\b(regulation|regulatory|compliance|policy)\b`),
			regexp.MustCompile(`(?i)\b(\d+%|percent).*?(growth|increase|rise)\b`),
		},
	},
	CategoryTalent: {
		Keywords: []string{
			"hire", "hiring", "recruit", "recruitment", "join",
			"employee", "headcount", "team", "staff", "workforce",
			"executive", "ceo", "cto", "cfo", "vp", "director",
			"manager", "lead", "head of", "chief",
			"appointment", "promotion", "departure", "exit",
			"organizational", "org chart", "restructure",
			"talent", "skill", "expertise", "experience",
			"opening", "position", "role", "job",
		},
		Types: typeSet("hiring", "growth", "leadership_change", "org_change"),
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(hire|hiring|hired|recruit)\b`),
			regexp.MustCompile(`(?i)\b(ceo|cto|cfo|cmo|vp|director|executive)\b`),
			regexp.MustCompile(`(?i)\b(join|joined|joining).*?(as|team)\b`),
			regexp.MustCompile(`(?i)\b(position|role|opening|job)\b`),
			regexp.MustCompile(`(?i)\b(\d+\+?).*?(employee|hire|position|opening)\b`),
		},
	},
}
