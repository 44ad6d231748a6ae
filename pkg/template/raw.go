package template

// rawTemplate is the direct YAML decoding target: a text-shaped mirror of
// pkg/ir.Template. All amounts/durations/timestamps arrive as strings per
// §6 ("quoted decimal strings to avoid numeric-precision ambiguity") and are
// parsed into typed values during validation, never before.
type rawTemplate struct {
	System  rawSystem    `yaml:"system"`
	Pool    rawPool      `yaml:"pool"`
	Rules   rawRules     `yaml:"rules"`
	Rights  rawRights    `yaml:"rights"`
	Time    rawTime      `yaml:"time"`
	Oracles []rawOracle  `yaml:"oracles"`
}

type rawSystem struct {
	Name string `yaml:"name"`
}

type rawAccessRule struct {
	Kind      string   `yaml:"kind"`
	ERC20     string   `yaml:"erc20,omitempty"`
	ERC721    string   `yaml:"erc721,omitempty"`
	Addresses []string `yaml:"addresses,omitempty"`
	MinAmount string   `yaml:"min_amount,omitempty"`
	Token     string   `yaml:"token,omitempty"`
}

type rawAsset struct {
	Kind    string     `yaml:"kind"`
	Address string     `yaml:"address,omitempty"`
	ID      string     `yaml:"id,omitempty"`
	Assets  []rawAsset `yaml:"assets,omitempty"`
}

type rawDistribution struct {
	Kind       string   `yaml:"kind"`
	Metric     string   `yaml:"metric,omitempty"`
	Thresholds []string `yaml:"thresholds,omitempty"`
}

type rawRecipient struct {
	Kind       string `yaml:"kind"`
	Count      int    `yaml:"count,omitempty"`
	Role       string `yaml:"role,omitempty"`
	Expression string `yaml:"expression,omitempty"`
}

type rawPool struct {
	Access       rawAccessRule   `yaml:"access"`
	Asset        rawAsset        `yaml:"asset"`
	Distribution rawDistribution `yaml:"distribution"`
	Recipients   rawRecipient    `yaml:"recipients"`
	Collector    string          `yaml:"collector,omitempty"`

	MinContribution string `yaml:"min_contribution,omitempty"`
	MaxContribution string `yaml:"max_contribution,omitempty"`
	Cap             string `yaml:"cap,omitempty"`
}

type rawAction struct {
	Kind       string   `yaml:"kind"`
	Permission string   `yaml:"permission,omitempty"`
	Target     string   `yaml:"target,omitempty"`
	Amount     string   `yaml:"amount,omitempty"`
	Asset      rawAsset `yaml:"asset,omitempty"`
	To         string   `yaml:"to,omitempty"`
	From       string   `yaml:"from,omitempty"`
	Name       string   `yaml:"name,omitempty"`
}

type rawCondition struct {
	Kind       string    `yaml:"kind"`
	Op         string    `yaml:"op,omitempty"`
	Asset      rawAsset  `yaml:"asset,omitempty"`
	Value      string    `yaml:"value,omitempty"`
	Oracle     string    `yaml:"oracle,omitempty"`
	Timestamp  string    `yaml:"timestamp,omitempty"`
	DebtAsset  rawAsset  `yaml:"debt_asset,omitempty"`
	EventName  string    `yaml:"event_name,omitempty"`
	Then       rawAction `yaml:"then"`
}

type rawRules struct {
	Conditions []rawCondition `yaml:"conditions"`
}

type rawRole struct {
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
	Members     []string `yaml:"members,omitempty"`
}

type rawRights struct {
	Roles []rawRole `yaml:"roles"`
}

type rawTimeBound struct {
	Kind  string `yaml:"kind"`
	Value string `yaml:"value,omitempty"`
}

type rawLock struct {
	Kind    string `yaml:"kind"`
	Seconds string `yaml:"seconds,omitempty"`
}

type rawVesting struct {
	Kind       string         `yaml:"kind"`
	Duration   string         `yaml:"duration,omitempty"`
	Schedule   []string       `yaml:"schedule,omitempty"`
	Conditions []rawCondition `yaml:"conditions,omitempty"`
	Cliff      string         `yaml:"cliff,omitempty"`
}

type rawTime struct {
	Start rawTimeBound `yaml:"start"`
	End   rawTimeBound `yaml:"end"`
	Locks rawLock      `yaml:"locks"`
	Vest  rawVesting   `yaml:"vest"`
}

type rawOracle struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Source string `yaml:"source"`
}
