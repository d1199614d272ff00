package config

var defaults = map[string]any{
	"secret":    "",
	"token_ttl": 24, // hours, matches the original session lifetime
	"log_level": "info",

	"allowed_networks": "",

	"base_url": "/",
	"scan_ttl": 120,

	"policy.policy_file":     "",
	"policy.member_suffix":   "@kkumail.com",
	"policy.approver_suffix": "@kku.ac.th",

	"booking.quota": 3,

	"storage.type":        "sqlite",
	"storage.sqlite.path": "./data/storage.db",
}

func Defaults() map[string]any {
	values := make(map[string]any)
	for k, v := range defaults {
		values[k] = v
	}
	return values
}
