package constants

const USER_AGENT = "r6stats/0.1.0 (+https://github.com/siegedash/r6stats)"
