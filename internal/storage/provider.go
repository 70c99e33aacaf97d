package storage

import "github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/ports"

// Provider is the storage contract the worker delivers through. Alias
// to ports.StorageProvider to keep call-sites simple.
type Provider = ports.StorageProvider
