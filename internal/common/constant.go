package common

// ClientInfoHeaderName is the gRPC metadata key carrying the client
// identifier (device/host description) on outbound sync requests.
const ClientInfoHeaderName = "x-client-info"

// UncategorizedName is shown for hardware whose category is missing or
// deleted.
const UncategorizedName = "Uncategorized"
