package common

import "time"

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// RetentionWindow is how long an unlocked capsule stays readable before it
// is retired.
const RetentionWindow = 30 * 24 * time.Hour

// UnlockCodeLength is the length of generated unlock codes.
const UnlockCodeLength = 10
