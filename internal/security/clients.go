package security

// In-memory registry of first-party staff clients allowed to mint service
// tokens (replace with DB/config later). Shopper identity never goes through
// here; it is delegated to the external auth service.
type Client struct {
	ID      string
	Secret  string
	Perms   []string // e.g. {"orders.read","orders.write","payments.refund"}
	Enabled bool
}

var Clients = map[string]Client{
	"store-admin":   {ID: "store-admin", Secret: "store-admin-secret", Perms: []string{"orders.read", "orders.write", "payments.refund", "auth.mint"}, Enabled: true},
	"svc-fulfiller": {ID: "svc-fulfiller", Secret: "fulfiller-secret", Perms: []string{"orders.read", "orders.write"}, Enabled: true},
	"svc-support":   {ID: "svc-support", Secret: "support-secret", Perms: []string{"orders.read"}, Enabled: true},
}
