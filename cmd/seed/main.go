package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"realestate-backend/internal/clients"
	"realestate-backend/internal/config"
	"realestate-backend/internal/contacts"
	"realestate-backend/internal/db"
	"realestate-backend/internal/newsletters"
	"realestate-backend/internal/projects"
	"realestate-backend/internal/uploads"
	"realestate-backend/internal/validation"
)

var seedProjects = []projects.CreateRequest{
	{Name: "Consultation", Description: "Project planning and feasibility review for residential developments."},
	{Name: "Design", Description: "Architecture and interior design for modern family homes."},
	{Name: "Marketing & Design", Description: "Brand, staging and photography for new listings."},
	{Name: "Harbour Lofts", Description: "Forty waterfront lofts with private terraces and shared marina access."},
}

var seedClients = []clients.CreateRequest{
	{Name: "Rowan Ellis", Designation: "CEO, Foreclosure Group", Description: "They sold our portfolio in record time and kept us informed at every step."},
	{Name: "Priya Nair", Designation: "Web Developer", Description: "Clear advice, honest pricing and a smooth handover of the keys."},
	{Name: "Marcus Lee", Designation: "Designer", Description: "The team found a home that fit both our budget and our style."},
}

var seedContacts = []contacts.CreateRequest{
	{FullName: "Jules Martin", Email: "jules.martin@example.com", Mobile: "+33 6 12 34 56 78", City: "Paris"},
	{FullName: "Ana Souza", Email: "ana.souza@example.com", Mobile: "(11) 98765-4321", City: "Lyon"},
	{FullName: "Tom Baker", Email: "tom.baker@example.com", Mobile: "020 7946 0958", City: "Paris"},
}

var seedSubscribers = []string{"news.reader@example.com", "homebuyer@example.com", "investor@example.com"}

// palette gives each generated placeholder a distinct gradient.
var palette = []color.NRGBA{
	{R: 32, G: 88, B: 160, A: 255},
	{R: 200, G: 96, B: 48, A: 255},
	{R: 56, G: 142, B: 60, A: 255},
	{R: 120, G: 72, B: 160, A: 255},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		log.Fatal(err)
	}

	pipeline, err := uploads.New(uploads.Options{
		Dir:       cfg.UploadDir,
		URLPrefix: cfg.UploadURLPrefix,
		MaxSize:   cfg.MaxFileSize,
		Width:     cfg.CropWidth,
		Height:    cfg.CropHeight,
		Quality:   cfg.JPEGQuality,
		MaxPixels: cfg.MaxInputPixels,
	}, logger)
	if err != nil {
		log.Fatal(err)
	}

	val := validation.New()
	projectsService := projects.NewService(projects.NewRepository(cols.Projects), pipeline, val, cfg.Timezone)
	clientsService := clients.NewService(clients.NewRepository(cols.Clients), pipeline, val, cfg.Timezone)
	contactsService := contacts.NewService(contacts.NewRepository(cols.Contacts), val, cfg.Timezone, nil)
	newslettersService := newsletters.NewService(newsletters.NewRepository(cols.Newsletters), val, cfg.Timezone, nil)

	for i, req := range seedProjects {
		if exists(ctx, cols.Projects, req.Name) {
			continue
		}
		if _, err := projectsService.Create(ctx, req, placeholder(i)); err != nil {
			log.Fatalf("seed project %q: %v", req.Name, err)
		}
		logger.Info("seeded project", slog.String("name", req.Name))
	}

	for i, req := range seedClients {
		if exists(ctx, cols.Clients, req.Name) {
			continue
		}
		if _, err := clientsService.Create(ctx, req, placeholder(i+1)); err != nil {
			log.Fatalf("seed client %q: %v", req.Name, err)
		}
		logger.Info("seeded client", slog.String("name", req.Name))
	}

	for _, req := range seedContacts {
		if _, err := contactsService.Create(ctx, req); err != nil && !errors.Is(err, contacts.ErrDuplicateEmail) {
			log.Fatalf("seed contact %q: %v", req.Email, err)
		}
	}

	for _, email := range seedSubscribers {
		if _, err := newslettersService.Subscribe(ctx, newsletters.SubscribeRequest{Email: email}); err != nil && !errors.Is(err, newsletters.ErrDuplicateEmail) {
			log.Fatalf("seed subscriber %q: %v", email, err)
		}
	}

	logger.Info("seed completed")
}

func exists(ctx context.Context, col *mongo.Collection, name string) bool {
	n, err := col.CountDocuments(ctx, bson.M{"name": name})
	if err != nil {
		log.Fatal(err)
	}
	return n > 0
}

// placeholder renders a 900x700 gradient PNG for the pipeline to crop.
func placeholder(i int) *uploads.Upload {
	base := palette[i%len(palette)]
	img := image.NewNRGBA(image.Rect(0, 0, 900, 700))
	for y := 0; y < 700; y++ {
		shade := uint8(y * 96 / 700)
		for x := 0; x < 900; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: sat(int(base.R) + int(shade)),
				G: sat(int(base.G) + int(shade)),
				B: sat(int(base.B) + x*32/900),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		log.Fatal(err)
	}
	return &uploads.Upload{
		Filename:    "placeholder.png",
		ContentType: "image/png",
		Size:        int64(buf.Len()),
		Body:        &buf,
	}
}

func sat(v int) uint8 {
	if v > 255 {
		return 255
	}
	return uint8(v)
}
