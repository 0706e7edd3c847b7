package battlegrpc

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	_ "google.golang.org/protobuf/types/known/emptypb"
	_ "google.golang.org/protobuf/types/known/structpb"
)

// ProtoFile e' il percorso del descrittore registrato per la reflection.
const ProtoFile = "mtcg/battle/v1/battle.proto"

// Il servizio non ha un .proto generato: il descrittore e' costruito a mano
// cosi' grpcurl e la reflection vedono metodi e tipi.
func init() {
	fd, err := protodesc.NewFile(fileDescriptor(), protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("battlegrpc: build descriptor: %v", err))
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(fmt.Sprintf("battlegrpc: register descriptor: %v", err))
	}
}

func fileDescriptor() *descriptorpb.FileDescriptorProto {
	methods := []string{MethodJoinBattle, MethodJoinRandomBattle, MethodGetScore, MethodGetScoreboard}
	svc := &descriptorpb.ServiceDescriptorProto{Name: proto.String("BattleService")}
	for _, m := range methods {
		svc.Method = append(svc.Method, &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(m),
			InputType:  proto.String(".google.protobuf.Empty"),
			OutputType: proto.String(".google.protobuf.Struct"),
		})
	}
	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String(ProtoFile),
		Package:    proto.String("mtcg.battle.v1"),
		Dependency: []string{"google/protobuf/empty.proto", "google/protobuf/struct.proto"},
		Service:    []*descriptorpb.ServiceDescriptorProto{svc},
		Syntax:     proto.String("proto3"),
	}
}
