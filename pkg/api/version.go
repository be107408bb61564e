package api

// Version is the client library version, reported in the User-Agent
// header of every request.
const Version = "0.8.0"
