package waypoint_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/domain"
)

func ExampleClient_Turn() {
	client, err := waypoint.New(waypoint.WithMode(domain.ModeQuick))
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	resp, err := client.Turn(ctx, "example",
		"Help plan my trip to dallas next weekend from the 10th to the 12th. "+
			"I will be flying my girlfriend in from LAX and I will be driving from Austin Texas")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(resp.Domain, resp.Question)
	fmt.Printf("%d/%d\n", resp.Progress.Answered, resp.Progress.Total)
	// Output:
	// travel budget
	// 4/5
}

func ExampleClient_Process() {
	client, err := waypoint.New()
	if err != nil {
		log.Fatal(err)
	}
	resp, err := client.Process(context.Background(), domain.TurnRequest{DomainHint: "event"})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(resp.Phase, resp.Question)
	// Output: gathering occasion
}
